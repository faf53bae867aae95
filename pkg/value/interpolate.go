package value

import (
	"fmt"

	"github.com/Faultbox/morphic/pkg/mesh"
)

// Interpolate blends prev toward target at t, writing into cur where the
// value is mutable (meshes, lists and maps) and returning the result.
// Numbers lerp, meshes lerp vertex-wise (along an arc when arc is non-zero)
// and collections recurse. Closures, and any pair whose kinds, list lengths
// or map keys differ, step to target at t >= 1. A map entry that steps to
// nil is left out of the result.
func Interpolate(prev, cur, target Value, t, arc float32) (Value, error) {
	if !sameContainer(prev, target) {
		return step(prev, target, t), nil
	}
	switch p := prev.(type) {
	case Number:
		q := target.(Number)
		tt := float64(t)
		return Number(float64(p)*(1-tt) + float64(q)*tt), nil
	case Mesh:
		q := target.(Mesh)
		if p.M == nil || q.M == nil {
			return step(prev, target, t), nil
		}
		c, ok := cur.(Mesh)
		if !ok || c.M == nil || c.M == p.M || c.M == q.M {
			c = Mesh{M: mesh.New()}
		}
		if err := mesh.Lerp(c.M, p.M, q.M, t, arc); err != nil {
			return nil, fmt.Errorf("interpolate: %w", err)
		}
		return c, nil
	case List:
		q := target.(List)
		c, ok := cur.(List)
		if !ok || len(c) != len(p) {
			c = make(List, len(p))
		}
		for i := range p {
			v, err := Interpolate(p[i], c[i], q[i], t, arc)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			c[i] = v
		}
		return c, nil
	case Map:
		q := target.(Map)
		c, ok := cur.(Map)
		if !ok {
			c = make(Map, len(p))
		}
		for _, k := range p.SortedKeys() {
			v, err := Interpolate(p[k], c[k], q[k], t, arc)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			if v == nil {
				delete(c, k)
				continue
			}
			c[k] = v
		}
		return c, nil
	}
	return step(prev, target, t), nil
}

// sameContainer compares the outer level of a and b only; mismatches
// further down step on their own.
func sameContainer(a, b Value) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case List:
		return len(x) == len(b.(List))
	case Map:
		y := b.(Map)
		if len(x) != len(y) {
			return false
		}
		for k := range x {
			if _, ok := y[k]; !ok {
				return false
			}
		}
	}
	return true
}

func step(prev, target Value, t float32) Value {
	if t >= 1 {
		return target
	}
	return prev
}
