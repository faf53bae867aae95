package mesh

import (
	"testing"

	"github.com/Faultbox/morphic/pkg/math"
)

func TestFromTrianglesWeldsFan(t *testing.T) {
	m := fan(6, 1)
	mustValidate(t, m)
	if len(m.Surfaces) != 6 || len(m.Curves) != 6 {
		t.Fatalf("fan counts = (%d surfaces, %d curves), want (6, 6)", len(m.Surfaces), len(m.Curves))
	}
	for i, s := range m.Surfaces {
		if !s.Edges[0].Is(KindSurface) || !s.Edges[2].Is(KindSurface) {
			t.Errorf("surface %d spokes = %v, %v, want surfaces", i, s.Edges[0], s.Edges[2])
		}
		if !s.Edges[1].Is(KindCurve) {
			t.Errorf("surface %d rim = %v, want a curve", i, s.Edges[1])
		}
	}
	chains := Chains(m)
	if len(chains) != 1 || !chains[0].Closed || len(chains[0].Curves) != 6 {
		t.Errorf("Chains() = %+v, want one closed chain of 6", chains)
	}
}

func TestFromTrianglesWithoutStroke(t *testing.T) {
	tris := [][3]math.Vec3{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}},
	}
	m := FromTriangles(tris, white, false)
	mustValidate(t, m)
	if len(m.Curves) != 0 {
		t.Errorf("curves = %d, want 0", len(m.Curves))
	}
	if m.Surfaces[0].Edges[2] != SurfaceAt(1) || m.Surfaces[1].Edges[0] != SurfaceAt(0) {
		t.Errorf("diagonal not welded: %v / %v", m.Surfaces[0].Edges, m.Surfaces[1].Edges)
	}
}

func TestPolylineCaps(t *testing.T) {
	b := NewBuilder()
	idx := b.Polyline([]math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 1, Z: 0}}, white, false)
	b.CapStart(idx[0])
	b.CapEnd(idx[len(idx)-1])
	m := b.Mesh()
	mustValidate(t, m)
	if len(m.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(m.Points))
	}
	if m.Curves[0].Prev != PointAt(0) || m.Curves[1].Next != PointAt(1) {
		t.Errorf("caps not linked: prev %v, next %v", m.Curves[0].Prev, m.Curves[1].Next)
	}
	if got := len(PointLayer(m).Points); got != 0 {
		t.Errorf("caps leaked into the point layer: %d", got)
	}
	if got := len(CurveLayer(m).Points); got != 2 {
		t.Errorf("CurveLayer caps = %d, want 2", got)
	}
}
