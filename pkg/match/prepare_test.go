package match

import (
	"testing"

	"github.com/Faultbox/morphic/pkg/shapes"
	"github.com/Faultbox/morphic/pkg/value"
)

func TestPrepareSameShape(t *testing.T) {
	mt := newMatcher(t)
	before := value.Map{
		"shape": value.NewMesh(shapes.RegularPolygon(3, 1)),
		"size":  value.Number(1),
	}
	after := value.Map{
		"shape": value.NewMesh(shapes.Outline(7, 2)),
		"size":  value.Number(3),
	}

	prev, cur, target, err := mt.Prepare(before, after)
	if err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	p, c, g := prev.(value.Map), cur.(value.Map), target.(value.Map)
	assertCongruent(t, p["shape"].(value.Mesh).M, c["shape"].(value.Mesh).M, g["shape"].(value.Mesh).M)

	mid, err := value.Interpolate(prev, cur, target, 0.5, 0)
	if err != nil {
		t.Fatalf("Interpolate() = %v", err)
	}
	if got := mid.(value.Map)["size"]; got != value.Number(2) {
		t.Errorf("size at 0.5 = %v, want 2", got)
	}
	if got := len(before["shape"].(value.Mesh).M.Surfaces); got != 3 {
		t.Errorf("Prepare modified its input: %d surfaces", got)
	}
}

func TestPrepareMismatchedStructure(t *testing.T) {
	mt := newMatcher(t)
	before := value.List{value.NewMesh(shapes.RegularPolygon(3, 1))}
	after := value.List{
		value.NewMesh(shapes.RegularPolygon(4, 1)),
		value.NewMesh(shapes.Dots(shapes.Ring(3, 1))),
	}

	prev, cur, target, err := mt.Prepare(before, after)
	if err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	if n := len(target.(value.List)); n != 2 {
		t.Fatalf("len(target) = %d, want 2", n)
	}
	for t0 := float32(0); t0 <= 1; t0 += 0.25 {
		if _, err := value.Interpolate(prev, cur, target, t0, 0); err != nil {
			t.Fatalf("Interpolate(%v) = %v", t0, err)
		}
	}
}

func TestPrepareSteps(t *testing.T) {
	mt := newMatcher(t)
	before := value.Number(1)
	after := value.List{value.Number(2)}

	prev, cur, target, err := mt.Prepare(before, after)
	if err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	got, err := value.Interpolate(prev, cur, target, 0.5, 0)
	if err != nil {
		t.Fatalf("Interpolate() = %v", err)
	}
	if got != value.Number(1) {
		t.Errorf("Interpolate(0.5) = %v, want 1", got)
	}
}

func TestPrepareKeepsMapStructure(t *testing.T) {
	mt := newMatcher(t)
	before := value.Map{
		"a": value.NewMesh(shapes.RegularPolygon(3, 1)),
		"n": value.Number(2),
	}
	after := value.Map{
		"a": value.NewMesh(shapes.RegularPolygon(4, 1)),
		"b": value.NewMesh(shapes.Outline(5, 1)),
	}

	prev, cur, target, err := mt.Prepare(before, after)
	if err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	p, c, g := prev.(value.Map), cur.(value.Map), target.(value.Map)
	for _, k := range []string{"a", "b"} {
		assertCongruent(t, p[k].(value.Mesh).M, c[k].(value.Mesh).M, g[k].(value.Mesh).M)
	}
	if p["n"] != value.Number(2) || g["n"] != nil {
		t.Errorf("n = %v -> %v, want 2 -> nil", p["n"], g["n"])
	}

	mid, err := value.Interpolate(prev, cur, target, 0.5, 0)
	if err != nil {
		t.Fatalf("Interpolate(0.5) = %v", err)
	}
	if got := mid.(value.Map)["n"]; got != value.Number(2) {
		t.Errorf("n at 0.5 = %v, want 2", got)
	}
	end, err := value.Interpolate(prev, cur, target, 1, 0)
	if err != nil {
		t.Fatalf("Interpolate(1) = %v", err)
	}
	m := end.(value.Map)
	if _, ok := m["n"]; ok || len(m) != 2 {
		t.Errorf("keys at 1 = %v, want a and b", m.SortedKeys())
	}
}

func TestPrepareListRuns(t *testing.T) {
	mt := newMatcher(t)
	before := value.List{
		value.NewMesh(shapes.RegularPolygon(3, 1)),
		value.Number(1),
	}
	after := value.List{
		value.NewMesh(shapes.RegularPolygon(4, 1)),
		value.NewMesh(shapes.Outline(5, 1)),
		value.Number(3),
	}

	prev, cur, target, err := mt.Prepare(before, after)
	if err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	p, c, g := prev.(value.List), cur.(value.List), target.(value.List)
	if len(p) != 3 || len(c) != 3 || len(g) != 3 {
		t.Fatalf("lengths = %d, %d, %d, want 3", len(p), len(c), len(g))
	}
	for i := 0; i < 2; i++ {
		assertCongruent(t, p[i].(value.Mesh).M, c[i].(value.Mesh).M, g[i].(value.Mesh).M)
	}
	mid, err := value.Interpolate(prev, cur, target, 0.5, 0)
	if err != nil {
		t.Fatalf("Interpolate() = %v", err)
	}
	if got := mid.(value.List)[2]; got != value.Number(2) {
		t.Errorf("number at 0.5 = %v, want 2", got)
	}
}

func TestPrepareSplitsMesh(t *testing.T) {
	mt := newMatcher(t)
	before := value.NewMesh(shapes.RegularPolygon(3, 1))
	after := value.List{
		value.NewMesh(shapes.RegularPolygon(3, 1)),
		value.NewMesh(shapes.RegularPolygon(4, 2)),
	}

	_, _, target, err := mt.Prepare(before, after)
	if err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	if l, ok := target.(value.List); !ok || len(l) != 2 {
		t.Errorf("target = %#v, want list of 2", target)
	}
}
