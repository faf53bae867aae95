package mesh

import "fmt"

// Kind selects which element array a Neighbor refers to.
type Kind uint8

const (
	KindNone Kind = iota
	KindSurface
	KindCurve
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSurface:
		return "surface"
	case KindCurve:
		return "curve"
	case KindPoint:
		return "point"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Neighbor is an adjacency reference into one of a mesh's element arrays.
// The zero value refers to nothing.
type Neighbor struct {
	Kind  Kind
	Index int
}

// None is the empty reference.
var None = Neighbor{}

// SurfaceAt references surface i.
func SurfaceAt(i int) Neighbor { return Neighbor{Kind: KindSurface, Index: i} }

// CurveAt references curve i.
func CurveAt(i int) Neighbor { return Neighbor{Kind: KindCurve, Index: i} }

// PointAt references point i.
func PointAt(i int) Neighbor { return Neighbor{Kind: KindPoint, Index: i} }

// IsNone reports whether n refers to nothing.
func (n Neighbor) IsNone() bool { return n.Kind == KindNone }

// Is reports whether n references an element of the given kind.
func (n Neighbor) Is(k Kind) bool { return n.Kind == k }

func (n Neighbor) String() string {
	if n.Kind == KindNone {
		return "none"
	}
	return fmt.Sprintf("%s#%d", n.Kind, n.Index)
}

// remap translates n through per-kind index tables. Entries of -1 mark
// dropped elements; references to them become None.
func (n Neighbor) remap(points, curves, surfaces []int) Neighbor {
	var table []int
	switch n.Kind {
	case KindPoint:
		table = points
	case KindCurve:
		table = curves
	case KindSurface:
		table = surfaces
	default:
		return None
	}
	if n.Index < 0 || n.Index >= len(table) || table[n.Index] < 0 {
		return None
	}
	return Neighbor{Kind: n.Kind, Index: table[n.Index]}
}

// shift offsets n by per-kind base indices, used when concatenating meshes.
func (n Neighbor) shift(points, curves, surfaces int) Neighbor {
	switch n.Kind {
	case KindPoint:
		n.Index += points
	case KindCurve:
		n.Index += curves
	case KindSurface:
		n.Index += surfaces
	}
	return n
}
