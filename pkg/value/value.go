// Package value defines the structured values animated by the timeline and
// their per-frame interpolation.
package value

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/Faultbox/morphic/pkg/mesh"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindMesh
	KindList
	KindMap
	KindClosure
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindMesh:
		return "mesh"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindClosure:
		return "closure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is one of Number, Mesh, List, Map or Closure.
type Value interface {
	Kind() Kind
	isValue()
}

// Number is a scalar.
type Number float64

// Mesh wraps a shape.
type Mesh struct {
	M *mesh.Mesh
}

// List is an ordered collection.
type List []Value

// Map is a keyed collection. Keys are visited in sorted order.
type Map map[string]Value

// Closure is an opaque callable. It cannot be blended and switches to the
// target at the end of a transition.
type Closure struct {
	Name string
	Fn   any
}

func (Number) Kind() Kind  { return KindNumber }
func (Mesh) Kind() Kind    { return KindMesh }
func (List) Kind() Kind    { return KindList }
func (Map) Kind() Kind     { return KindMap }
func (Closure) Kind() Kind { return KindClosure }

func (Number) isValue()  {}
func (Mesh) isValue()    {}
func (List) isValue()    {}
func (Map) isValue()     {}
func (Closure) isValue() {}

// NewMesh wraps m.
func NewMesh(m *mesh.Mesh) Mesh { return Mesh{M: m} }

// SortedKeys returns the keys of m in ascending order.
func (m Map) SortedKeys() []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

// Clone deep-copies v. Meshes are cloned; closures are shared.
func Clone(v Value) Value {
	switch x := v.(type) {
	case Mesh:
		return Mesh{M: x.M.Clone()}
	case List:
		out := make(List, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case Map:
		out := make(Map, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	}
	return v
}

// Meshes returns every mesh reachable from v in traversal order: list order,
// then sorted map keys.
func Meshes(v Value) []*mesh.Mesh {
	var out []*mesh.Mesh
	Walk(v, func(m *mesh.Mesh) { out = append(out, m) })
	return out
}

// Walk calls fn for every mesh reachable from v.
func Walk(v Value, fn func(*mesh.Mesh)) {
	switch x := v.(type) {
	case Mesh:
		if x.M != nil {
			fn(x.M)
		}
	case List:
		for _, e := range x {
			Walk(e, fn)
		}
	case Map:
		for _, k := range x.SortedKeys() {
			Walk(x[k], fn)
		}
	}
}
