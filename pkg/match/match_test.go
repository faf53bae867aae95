package match

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/shapes"
)

func newMatcher(t *testing.T) *Matcher {
	t.Helper()
	opts := DefaultOptions()
	opts.CheckInvariants = true
	return New(zaptest.NewLogger(t), opts)
}

func TestLoggerName(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mt := New(zap.New(core), DefaultOptions())
	if _, _, _, err := mt.MatchGroup([]*mesh.Mesh{shapes.RegularPolygon(3, 1)}, []*mesh.Mesh{shapes.RegularPolygon(4, 1)}); err != nil {
		t.Fatalf("MatchGroup() = %v", err)
	}
	if logs.Len() == 0 {
		t.Fatal("no log entries")
	}
	for _, e := range logs.All() {
		if e.LoggerName != "match" {
			t.Errorf("logger name = %q, want match", e.LoggerName)
		}
	}
}

func mustMatch(t *testing.T, mt *Matcher, a, b *mesh.Mesh) *mesh.Mesh {
	t.Helper()
	dump := mesh.New()
	if err := mt.MatchMesh(a, dump, b); err != nil {
		t.Fatalf("MatchMesh() = %v", err)
	}
	assertCongruent(t, a, dump, b)
	return dump
}

func assertCongruent(t *testing.T, ms ...*mesh.Mesh) {
	t.Helper()
	for i, m := range ms {
		if err := mesh.Validate(m); err != nil {
			t.Errorf("mesh %d: Validate() = %v", i, err)
		}
		if i > 0 && !mesh.SameTopology(ms[0], m) {
			p0, c0, s0 := ms[0].Counts()
			p, c, s := m.Counts()
			t.Errorf("mesh %d not congruent: (%d,%d,%d) vs (%d,%d,%d)", i, p0, c0, s0, p, c, s)
		}
	}
}

func shifted(m *mesh.Mesh, x, y float32) *mesh.Mesh {
	m.Shift(math.Vec3{X: x, Y: y})
	return m
}

func TestMatchMeshTriangleToHexagon(t *testing.T) {
	mt := newMatcher(t)
	a := shapes.RegularPolygon(3, 1)
	b := shapes.RegularPolygon(6, 2)
	loA, hiA, _ := a.Bounds()
	loB, hiB, _ := b.Bounds()
	lo, hi := loA.Min(loB), hiA.Max(hiB)

	dump := mustMatch(t, mt, a, b)
	if n := len(a.Surfaces); n < 6 {
		t.Errorf("len(Surfaces) = %d, want >= 6", n)
	}
	if err := mesh.Lerp(dump, a, b, 0.5, 0); err != nil {
		t.Fatalf("Lerp() = %v", err)
	}
	const eps = 1e-4
	dump.Positions(func(p math.Vec3) {
		if p.X < lo.X-eps || p.Y < lo.Y-eps || p.X > hi.X+eps || p.Y > hi.Y+eps {
			t.Errorf("midpoint vertex %v outside %v..%v", p, lo, hi)
		}
	})
}

func TestMatchMeshLoopsKeepCorners(t *testing.T) {
	mt := newMatcher(t)
	a := shapes.Outline(8, 1)
	b := shapes.Outline(3, 1)
	corners := shapes.Ring(3, 1)

	mustMatch(t, mt, a, b)
	if len(a.Curves) != 8 || len(b.Curves) != 8 {
		t.Fatalf("curves = %d, %d, want 8, 8", len(a.Curves), len(b.Curves))
	}
	for _, c := range corners {
		found := false
		for _, cv := range b.Curves {
			if cv.A.Pos == c {
				found = true
			}
		}
		if !found {
			t.Errorf("corner %v lost", c)
		}
	}
}

func TestMatchMeshIdempotent(t *testing.T) {
	mt := newMatcher(t)
	a := shapes.Star(5, 2, 1)
	b := shapes.RegularPolygon(4, 1)
	mustMatch(t, mt, a, b)

	ha, hb := a.Hash(), b.Hash()
	dump := mustMatch(t, mt, a, b)
	if a.Hash() != ha || b.Hash() != hb {
		t.Errorf("second MatchMesh changed congruent inputs")
	}
	if !mesh.SameTopology(dump, a) {
		t.Errorf("dump not congruent after identity match")
	}
}

func TestMatchMeshInterpolationEndpoints(t *testing.T) {
	mt := newMatcher(t)
	a := shapes.RegularPolygon(5, 1)
	b := shapes.Outline(7, 2)
	dump := mustMatch(t, mt, a, b)

	for _, tt := range []struct {
		t    float32
		want *mesh.Mesh
	}{{0, a}, {1, b}} {
		if err := mesh.Lerp(dump, a, b, tt.t, 0); err != nil {
			t.Fatalf("Lerp(%v) = %v", tt.t, err)
		}
		if dump.Hash() != tt.want.Hash() {
			t.Errorf("Lerp(%v) differs from endpoint", tt.t)
		}
	}
}

func TestMatchMeshRankPairs(t *testing.T) {
	dots := shapes.Dots([]math.Vec3{{X: 3}, {X: 4}, {X: 5}})
	tests := []struct {
		name string
		a, b func() *mesh.Mesh
	}{
		{"surface-curve", func() *mesh.Mesh { return shapes.RegularPolygon(4, 1) }, func() *mesh.Mesh { return shapes.Outline(6, 2) }},
		{"curve-surface", func() *mesh.Mesh { return shapes.Outline(5, 2) }, func() *mesh.Mesh { return shapes.Rectangle(2, 1) }},
		{"surface-point", func() *mesh.Mesh { return shapes.RegularPolygon(4, 1) }, dots.Clone},
		{"point-curve", dots.Clone, func() *mesh.Mesh { return shapes.Polyline([]math.Vec3{{}, {X: 1}, {X: 1, Y: 1}}, false) }},
		{"point-point", func() *mesh.Mesh { return shapes.Dots([]math.Vec3{{}}) }, dots.Clone},
		{"open-closed", func() *mesh.Mesh { return shapes.Polyline([]math.Vec3{{}, {X: 1}}, false) }, func() *mesh.Mesh { return shapes.Outline(4, 1) }},
		{"surface-empty", func() *mesh.Mesh { return shapes.RegularPolygon(3, 1) }, mesh.New},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustMatch(t, newMatcher(t), tt.a(), tt.b())
		})
	}
}

func TestMatchMeshFadesPoints(t *testing.T) {
	mt := newMatcher(t)
	a := shapes.RegularPolygon(4, 1)
	b := shapes.Dots([]math.Vec3{{X: 3}, {X: 4}})
	mustMatch(t, mt, a, b)

	for i, s := range b.Surfaces {
		for _, v := range s.V {
			if v.Color.W != 0 {
				t.Errorf("target surface %d alpha = %v, want 0", i, v.Color.W)
			}
		}
	}
	for i, p := range a.Points {
		if p.Color.W != 0 {
			t.Errorf("previous point %d alpha = %v, want 0", i, p.Color.W)
		}
	}
}

func TestMatchMeshMixedLayers(t *testing.T) {
	mt := newMatcher(t)
	a := mesh.Merge(shapes.RegularPolygon(3, 1), shapes.Dots([]math.Vec3{{Z: 1}}))
	b := mesh.Merge(shapes.RegularPolygon(4, 1), shapes.Outline(5, 3), shapes.Dots([]math.Vec3{{Z: 1}, {Z: 2}}))
	mustMatch(t, mt, a, b)
}

func TestMatchMeshRestoresMirrors(t *testing.T) {
	mt := newMatcher(t)
	a := shapes.RegularPolygon(3, 1)
	a.TwoSided()
	b := shapes.RegularPolygon(5, 1)
	mustMatch(t, mt, a, b)

	for i, s := range b.Surfaces {
		if s.Mirror.IsNone() {
			t.Fatalf("target surface %d has no mirror", i)
		}
	}
}

func TestMatchMeshKeepsUniformsAndTags(t *testing.T) {
	mt := newMatcher(t)
	a := shapes.RegularPolygon(3, 1)
	a.Uniforms.Opacity = 0.25
	a.Tags = []float64{1, 2}
	b := shapes.Outline(4, 1)
	b.Uniforms.ZClass = 3
	mustMatch(t, mt, a, b)

	if a.Uniforms.Opacity != 0.25 || len(a.Tags) != 2 {
		t.Errorf("previous lost its uniforms or tags: %+v %v", a.Uniforms, a.Tags)
	}
	if b.Uniforms.ZClass != 3 || len(b.Tags) != 0 {
		t.Errorf("target lost its uniforms or tags: %+v %v", b.Uniforms, b.Tags)
	}
}

func TestMatchPlanarLoopCounts(t *testing.T) {
	mt := newMatcher(t)
	a := mesh.Merge(shifted(shapes.Outline(4, 1), -3, 0), shifted(shapes.Outline(4, 1), 3, 0))
	b := mesh.Merge(shifted(shapes.Outline(4, 1), -4, 0), shapes.Outline(4, 1), shifted(shapes.Outline(4, 1), 4, 0))
	mustMatch(t, mt, a, b)

	if got := len(mesh.Chains(a)); got != 6 {
		t.Errorf("len(Chains(previous)) = %d, want 6", got)
	}
	if got := len(b.Curves); got != 24 {
		t.Errorf("len(target.Curves) = %d, want 24", got)
	}
}

func TestMatchPlanarFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.PlanarMaxPairs = 1
	mt := New(zaptest.NewLogger(t), opts)
	a := mesh.Merge(shifted(shapes.Outline(4, 1), -3, 0), shifted(shapes.Outline(4, 1), 3, 0))
	b := mesh.Merge(shifted(shapes.Outline(4, 1), -4, 0), shapes.Outline(4, 1), shifted(shapes.Outline(4, 1), 4, 0))
	if _, _, ok := mt.matchPlanar(a, b); ok {
		t.Fatalf("matchPlanar() accepted 6 pairs over a limit of 1")
	}
	mustMatch(t, mt, a, b)
	if got := len(mesh.Chains(a)); got != 3 {
		t.Errorf("len(Chains(previous)) = %d, want 3", got)
	}
}
