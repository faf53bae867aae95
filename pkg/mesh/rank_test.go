package mesh

import (
	"errors"
	"testing"

	"github.com/Faultbox/morphic/pkg/math"
)

func TestUprankLoopToFan(t *testing.T) {
	m, err := Uprank(loop(4, 1), false)
	if err != nil {
		t.Fatalf("Uprank() error = %v", err)
	}
	mustValidate(t, m)
	if len(m.Surfaces) != 4 || len(m.Curves) != 4 {
		t.Fatalf("Uprank() counts = (%d surfaces, %d curves), want (4, 4)", len(m.Surfaces), len(m.Curves))
	}
	for i, s := range m.Surfaces {
		for k, v := range s.V {
			if v.Color.W != 0 {
				t.Errorf("surface %d vertex %d alpha = %v, want 0", i, k, v.Color.W)
			}
		}
		if !s.Edges[1].Is(KindCurve) {
			t.Errorf("surface %d outer edge = %v, want its curve", i, s.Edges[1])
		}
	}
	for i, c := range m.Curves {
		if c.A.Color.W != 1 {
			t.Errorf("curve %d lost its color: %v", i, c.A.Color)
		}
	}
	if chains := Chains(m); len(chains) != 1 || !chains[0].Closed {
		t.Errorf("Chains() after Uprank = %+v, want one closed loop", chains)
	}
}

func TestUprankOpenChain(t *testing.T) {
	b := NewBuilder()
	b.Polyline([]math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}}, white, false)
	m, err := Uprank(b.Mesh(), false)
	if err != nil {
		t.Fatalf("Uprank() error = %v", err)
	}
	mustValidate(t, m)
	if !m.Surfaces[0].Edges[0].IsNone() || !m.Surfaces[1].Edges[2].IsNone() {
		t.Errorf("open fan should leave its gap edges empty: %v, %v", m.Surfaces[0].Edges, m.Surfaces[1].Edges)
	}
}

func TestUprankPoints(t *testing.T) {
	pts := &Mesh{Points: []Point{{Pos: math.Vec3{X: 1}}, {Pos: math.Vec3{Y: 1}}}}
	m, err := Uprank(pts, false)
	if err != nil {
		t.Fatalf("Uprank() error = %v", err)
	}
	mustValidate(t, m)
	if len(m.Curves) != 2 {
		t.Fatalf("curves = %d, want 2", len(m.Curves))
	}
	for i, c := range m.Curves {
		if c.Next != CurveAt(i) || c.A.Pos != c.B.Pos {
			t.Errorf("curve %d = %+v, want a zero-length self loop", i, c)
		}
	}
}

func TestUprankSurfaceRejected(t *testing.T) {
	_, err := Uprank(fan(3, 1), false)
	if !errors.Is(err, ErrAlreadySurface) {
		t.Errorf("Uprank() error = %v, want ErrAlreadySurface", err)
	}
	if !errors.Is(err, ErrRank) {
		t.Errorf("Uprank() error = %v, want it to wrap ErrRank", err)
	}
	var re *RankError
	if !errors.As(err, &re) || re.Op != "uprank" {
		t.Errorf("Uprank() error = %#v, want *RankError for uprank", err)
	}

	m, err := Uprank(fan(3, 1), true)
	if err != nil || len(m.Surfaces) != 3 {
		t.Errorf("forced Uprank() = (%d surfaces, %v), want the mesh unchanged", len(m.Surfaces), err)
	}
}

func TestDownrank(t *testing.T) {
	curves, err := Downrank(fan(6, 1))
	if err != nil {
		t.Fatalf("Downrank(fan) error = %v", err)
	}
	mustValidate(t, curves)
	if len(curves.Surfaces) != 0 || len(curves.Curves) != 6 {
		t.Errorf("Downrank(fan) counts = (%d surfaces, %d curves), want (0, 6)", len(curves.Surfaces), len(curves.Curves))
	}
	for i, c := range curves.Curves {
		if !c.Twin.IsNone() {
			t.Errorf("curve %d twin = %v, want none", i, c.Twin)
		}
	}

	points, err := Downrank(curves)
	if err != nil {
		t.Fatalf("Downrank(curves) error = %v", err)
	}
	if len(points.Points) != 6 || len(points.Curves) != 0 {
		t.Errorf("Downrank(curves) = (%d points, %d curves), want (6, 0)", len(points.Points), len(points.Curves))
	}

	_, err = Downrank(points)
	if !errors.Is(err, ErrRankUnderflow) || !errors.Is(err, ErrRank) {
		t.Errorf("Downrank(points) error = %v, want ErrRankUnderflow", err)
	}
}

func TestDownrankStrokesOpenEdges(t *testing.T) {
	tris := [][3]math.Vec3{{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}}
	m, err := Downrank(FromTriangles(tris, white, false))
	if err != nil {
		t.Fatalf("Downrank() error = %v", err)
	}
	mustValidate(t, m)
	if len(m.Curves) != 3 {
		t.Errorf("boundary curves = %d, want 3", len(m.Curves))
	}
}

func TestRequireNoSurfaces(t *testing.T) {
	if err := RequireNoSurfaces(loop(3, 1), "bend"); err != nil {
		t.Errorf("RequireNoSurfaces(loop) = %v, want nil", err)
	}
	err := RequireNoSurfaces(fan(3, 1), "bend")
	var re *RankError
	if !errors.As(err, &re) || re.Op != "bend" || !errors.Is(err, ErrHasSurfaces) {
		t.Errorf("RequireNoSurfaces(fan) = %v, want a bend RankError", err)
	}
}
