package mesh

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/math"
)

func TestBend(t *testing.T) {
	b := NewBuilder()
	b.Polyline([]math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}, white, false)
	m, err := Bend(b.Mesh(), 1)
	if err != nil {
		t.Fatalf("Bend() error = %v", err)
	}
	if got := m.Curves[0].A.Pos; got != (math.Vec3{}) {
		t.Errorf("origin moved to %v", got)
	}
	if got := m.Curves[0].B.Pos; got.Y <= 0 {
		t.Errorf("bent endpoint = %v, want it lifted above the axis", got)
	}
	if d := m.Curves[0].B.Pos.Sub(math.Vec3{Y: 1}).Length(); d < 0.999 || d > 1.001 {
		t.Errorf("bent endpoint distance from center = %v, want 1", d)
	}

	if _, err := Bend(fan(3, 1), 1); !errors.Is(err, ErrHasSurfaces) {
		t.Errorf("Bend(fan) error = %v, want ErrHasSurfaces", err)
	}
}

func TestRevolveFull(t *testing.T) {
	b := NewBuilder()
	b.Polyline([]math.Vec3{{X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}}, white, false)
	m, err := Revolve(b.Mesh(), 2*math32.Pi, 8)
	if err != nil {
		t.Fatalf("Revolve() error = %v", err)
	}
	mustValidate(t, m)
	if len(m.Surfaces) != 16 {
		t.Errorf("Revolve() surfaces = %d, want 16", len(m.Surfaces))
	}
	if len(m.Curves) != 16 {
		t.Errorf("Revolve() rim curves = %d, want 16", len(m.Curves))
	}

	if _, err := Revolve(fan(3, 1), 1, 4); !errors.Is(err, ErrRank) {
		t.Errorf("Revolve(fan) error = %v, want ErrRank", err)
	}
}

func TestExtrude(t *testing.T) {
	m, err := Extrude(loop(4, 1), math.Vec3{Z: 1})
	if err != nil {
		t.Fatalf("Extrude() error = %v", err)
	}
	mustValidate(t, m)
	if len(m.Surfaces) != 8 || len(m.Curves) != 8 {
		t.Errorf("Extrude() counts = (%d surfaces, %d curves), want (8, 8)", len(m.Surfaces), len(m.Curves))
	}

	pts, err := Extrude(&Mesh{Points: []Point{{Color: white}}}, math.Vec3{X: 1})
	if err != nil {
		t.Fatalf("Extrude(points) error = %v", err)
	}
	if len(pts.Curves) != 1 || pts.Curves[0].B.Pos != (math.Vec3{X: 1}) {
		t.Errorf("Extrude(points) = %+v, want one unit segment", pts.Curves)
	}
}
