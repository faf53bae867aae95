package script

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/value"
)

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"keyword", `(polygon 6 :radius 2)`, `(polygon 6 "__kw_radius" 2)`},
		{"keyword in string", `"a :b c"`, `"a :b c"`},
		{"escaped quote", `"a \" :b" :c`, `"a \" :b" "__kw_c"`},
		{"comment", `;; note :x`, `// note :x`},
		{"minus", `(- 10 5)`, `(- 10 5)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.input); got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestGenerators(t *testing.T) {
	tests := []struct {
		src            string
		points, curves int
		surfaces       int
	}{
		{"(polygon 6)", 0, 6, 6},
		{"(polygon 3 :radius 2)", 0, 3, 3},
		{"(outline 5)", 0, 5, 0},
		{"(rect 2 1)", 0, 4, 2},
		{"(star 5)", 0, 10, 10},
		{"(dots 4)", 4, 0, 0},
		{"(path 0 0 1 0 1 1)", 2, 2, 0},
		{"(path 0 0 1 0 1 1 :closed true)", 0, 3, 0},
		{`(shape "outline:7")`, 0, 7, 0},
	}
	e := newEngine(t)
	for _, tt := range tests {
		m := meshOf(t, mustEval(t, e, tt.src))
		np, nc, ns := m.Counts()
		if np != tt.points || nc != tt.curves || ns != tt.surfaces {
			t.Errorf("%s counts = (%d, %d, %d), want (%d, %d, %d)", tt.src, np, nc, ns, tt.points, tt.curves, tt.surfaces)
		}
		if err := mesh.Validate(m); err != nil {
			t.Errorf("%s Validate() = %v", tt.src, err)
		}
	}
}

func TestShiftLeavesOriginal(t *testing.T) {
	e := newEngine(t)
	v := mustEval(t, e, `
(def p (polygon 4 :radius 2))
(list p (shift p 1 0))`)
	l := v.(value.List)
	c0, _ := meshOf(t, l[0]).Centroid()
	c1, _ := meshOf(t, l[1]).Centroid()
	if math32.Abs(c0.X) > 1e-5 {
		t.Errorf("original centroid X = %v, want 0", c0.X)
	}
	if math32.Abs(c1.X-1) > 1e-5 {
		t.Errorf("shifted centroid X = %v, want 1", c1.X)
	}
}

func TestScaleAndTag(t *testing.T) {
	e := newEngine(t)
	m := meshOf(t, mustEval(t, e, "(tag (scale (outline 4) 3) 2 1)"))
	lo, hi, ok := m.Bounds()
	if !ok || math32.Abs(hi.Y-lo.Y-6) > 1e-4 {
		t.Errorf("scaled height = %v, want 6", hi.Y-lo.Y)
	}
	if len(m.Tags) != 2 || m.Tags[0] != 2 || m.Tags[1] != 1 {
		t.Errorf("Tags = %v, want [2 1]", m.Tags)
	}
}

func TestRankBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want mesh.Rank
	}{
		{"(downrank (polygon 3))", mesh.RankCurve},
		{"(downrank (downrank (polygon 3)))", mesh.RankPoint},
		{"(uprank (outline 4))", mesh.RankSurface},
		{"(uprank (polygon 3) :force true)", mesh.RankSurface},
		{"(extrude (outline 4) 0 0 1)", mesh.RankSurface},
		{"(revolve (path 1 0 1 1) :steps 8)", mesh.RankSurface},
		{"(bend (outline 4) 0.5)", mesh.RankCurve},
		{"(curves (merge (polygon 3) (outline 4)))", mesh.RankCurve},
		{"(surfaces (merge (polygon 3) (dots 2)))", mesh.RankSurface},
		{"(points (merge (polygon 3) (dots 2)))", mesh.RankPoint},
	}
	e := newEngine(t)
	for _, tt := range tests {
		if got := meshOf(t, mustEval(t, e, tt.src)).Rank(); got != tt.want {
			t.Errorf("%s rank = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestBuiltinArgumentErrors(t *testing.T) {
	e := newEngine(t)
	for _, src := range []string{
		`(shift 3 1 0)`,
		`(polygon "six")`,
		`(path 0 0 1)`,
		`(bend (polygon 3) 1)`,
		`(morph (polygon 3))`,
	} {
		_, evalErrs, err := e.Evaluate(src)
		if err != nil {
			t.Errorf("Evaluate(%q) fatal error = %v", src, err)
			continue
		}
		if len(evalErrs) == 0 {
			t.Errorf("Evaluate(%q) = no eval errors", src)
		}
	}
}

func TestMorph(t *testing.T) {
	e := newEngine(t)

	if v := mustEval(t, e, "(morph 2 6 0.25)"); v != value.Number(3) {
		t.Errorf("(morph 2 6 0.25) = %v, want 3", v)
	}

	start := meshOf(t, mustEval(t, e, "(morph (polygon 3) (polygon 6) 0)"))
	end := meshOf(t, mustEval(t, e, "(morph (polygon 3) (polygon 6) 1)"))
	if len(start.Surfaces) < 6 {
		t.Errorf("morphed surfaces = %d, want at least 6", len(start.Surfaces))
	}
	if !mesh.SameTopology(start, end) {
		t.Errorf("morph endpoints are not congruent")
	}

	l := mustEval(t, e, "(morph (list (outline 3) 1) (list (outline 8) 3) 0.5)").(value.List)
	if len(l) != 2 || l[1] != value.Number(2) {
		t.Errorf("list morph = %v, want [mesh 2]", l)
	}
}
