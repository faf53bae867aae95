package match

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/value"
)

// Prepare readies a transition from before to after. It returns congruent
// previous, current and target values that keep the containers of the
// inputs: lists and maps recurse element by element, meshes are matched,
// and runs of meshes whose lengths differ are paired through MatchTree.
// A value present on one side only fades when it is a mesh and steps
// otherwise; nil marks the absent side of a step. The inputs are not
// modified.
func (mt *Matcher) Prepare(before, after value.Value) (prev, cur, target value.Value, err error) {
	return mt.prepare(before, after)
}

func (mt *Matcher) prepare(before, after value.Value) (prev, cur, target value.Value, err error) {
	switch {
	case before == nil && after == nil:
		return nil, nil, nil, nil
	case before == nil:
		return mt.fade(after, false)
	case after == nil:
		return mt.fade(before, true)
	}

	switch x := before.(type) {
	case value.Mesh:
		if y, ok := after.(value.Mesh); ok {
			return mt.prepareMesh(x.M, y.M)
		}
	case value.List:
		if y, ok := after.(value.List); ok {
			return mt.prepareList(x, y)
		}
	case value.Map:
		if y, ok := after.(value.Map); ok {
			return mt.prepareMap(x, y)
		}
	}
	// A mesh split into a list of meshes, or the reverse.
	if meshesOnly(before) && meshesOnly(after) {
		return mt.matchRun(value.Meshes(before), value.Meshes(after))
	}
	return before, value.Clone(before), after, nil
}

func (mt *Matcher) prepareMesh(a, b *mesh.Mesh) (prev, cur, target value.Value, err error) {
	a, b = meshOrEmpty(a), meshOrEmpty(b)
	dump := mesh.New()
	if err := mt.MatchMesh(a, dump, b); err != nil {
		return nil, nil, nil, err
	}
	return value.NewMesh(a), value.NewMesh(dump), value.NewMesh(b), nil
}

func (mt *Matcher) prepareList(x, y value.List) (prev, cur, target value.Value, err error) {
	var p, c, t value.List
	add := func(pv, cv, tv value.Value) {
		p = append(p, pv)
		c = append(c, cv)
		t = append(t, tv)
	}

	if len(x) == len(y) {
		for i := range x {
			pv, cv, tv, err := mt.prepare(x[i], y[i])
			if err != nil {
				return nil, nil, nil, fmt.Errorf("[%d]: %w", i, err)
			}
			add(pv, cv, tv)
		}
		return p, c, t, nil
	}

	sx, sy := segmentList(x), segmentList(y)
	if segmentsAlign(sx, sy) {
		for i := range sx {
			if sx[i].run == nil {
				pv, cv, tv, err := mt.prepare(sx[i].item, sy[i].item)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("[%d]: %w", sx[i].start, err)
				}
				add(pv, cv, tv)
				continue
			}
			rp, rc, rt, err := mt.MatchTree(value.List(sx[i].run), value.List(sy[i].run), mt.opts.TagMode, mt.opts.TagTable)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("[%d]: %w", sx[i].start, err)
			}
			for j := range rp {
				add(rp[j], rc[j], rt[j])
			}
		}
		return p, c, t, nil
	}

	// Runs do not line up: pair positionally and fade the tail.
	for i := 0; i < max(len(x), len(y)); i++ {
		var pv, cv, tv value.Value
		switch {
		case i >= len(y):
			pv, cv, tv, err = mt.fade(x[i], true)
		case i >= len(x):
			pv, cv, tv, err = mt.fade(y[i], false)
		default:
			pv, cv, tv, err = mt.prepare(x[i], y[i])
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("[%d]: %w", i, err)
		}
		add(pv, cv, tv)
	}
	return p, c, t, nil
}

func (mt *Matcher) prepareMap(x, y value.Map) (prev, cur, target value.Value, err error) {
	keys := lo.Union(x.SortedKeys(), y.SortedKeys())
	p, c, t := make(value.Map, len(keys)), make(value.Map, len(keys)), make(value.Map, len(keys))
	for _, k := range keys {
		a, inA := x[k]
		b, inB := y[k]
		var pv, cv, tv value.Value
		switch {
		case !inB:
			pv, cv, tv, err = mt.fade(a, true)
		case !inA:
			pv, cv, tv, err = mt.fade(b, false)
		default:
			pv, cv, tv, err = mt.prepare(a, b)
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("[%q]: %w", k, err)
		}
		p[k], c[k], t[k] = pv, cv, tv
	}
	return p, c, t, nil
}

// fade pairs v with its absence. Meshes are matched against an empty mesh;
// other leaves pair with nil so they step. out selects v as the before side.
func (mt *Matcher) fade(v value.Value, out bool) (prev, cur, target value.Value, err error) {
	switch x := v.(type) {
	case value.Mesh:
		if out {
			return mt.prepareMesh(x.M, nil)
		}
		return mt.prepareMesh(nil, x.M)
	case value.List:
		p, c, t := make(value.List, len(x)), make(value.List, len(x)), make(value.List, len(x))
		for i := range x {
			if p[i], c[i], t[i], err = mt.fade(x[i], out); err != nil {
				return nil, nil, nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return p, c, t, nil
	case value.Map:
		p, c, t := make(value.Map, len(x)), make(value.Map, len(x)), make(value.Map, len(x))
		for _, k := range x.SortedKeys() {
			if p[k], c[k], t[k], err = mt.fade(x[k], out); err != nil {
				return nil, nil, nil, fmt.Errorf("[%q]: %w", k, err)
			}
		}
		return p, c, t, nil
	}
	if out {
		return v, value.Clone(v), nil, nil
	}
	return nil, nil, v, nil
}

// matchRun pairs two runs of meshes through MatchTree.
func (mt *Matcher) matchRun(as, bs []*mesh.Mesh) (prev, cur, target value.Value, err error) {
	wrap := func(ms []*mesh.Mesh) value.List {
		return lo.Map(ms, func(m *mesh.Mesh, _ int) value.Value { return value.NewMesh(m) })
	}
	p, c, t, err := mt.MatchTree(wrap(as), wrap(bs), mt.opts.TagMode, mt.opts.TagTable)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, c, t, nil
}

// segment is either a maximal run of consecutive meshes or a single
// non-mesh item of a list.
type segment struct {
	start int
	run   []value.Value
	item  value.Value
}

func segmentList(l value.List) []segment {
	var out []segment
	for i, v := range l {
		if m, ok := v.(value.Mesh); ok && m.M != nil {
			if n := len(out); n > 0 && out[n-1].run != nil {
				out[n-1].run = append(out[n-1].run, v)
				continue
			}
			out = append(out, segment{start: i, run: []value.Value{v}})
			continue
		}
		out = append(out, segment{start: i, item: v})
	}
	return out
}

func segmentsAlign(a, b []segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if (a[i].run == nil) != (b[i].run == nil) {
			return false
		}
	}
	return true
}

// meshesOnly reports whether v holds at least one mesh and nothing else.
func meshesOnly(v value.Value) bool {
	switch x := v.(type) {
	case value.Mesh:
		return x.M != nil
	case value.List:
		return len(x) > 0 && lo.EveryBy(x, meshesOnly)
	case value.Map:
		return len(x) > 0 && lo.EveryBy(lo.Values(x), meshesOnly)
	}
	return false
}

func meshOrEmpty(m *mesh.Mesh) *mesh.Mesh {
	if m == nil {
		return mesh.New()
	}
	return m.Clone()
}
