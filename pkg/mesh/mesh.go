// Package mesh holds the arena representation of animatable shapes: points,
// curves and triangular surfaces linked by typed adjacency references, along
// with builders, validation, rank conversion and geometric operators.
package mesh

import (
	"github.com/Faultbox/morphic/pkg/math"
)

// Vertex is a curve endpoint.
type Vertex struct {
	Pos   math.Vec3
	Color math.Vec4
}

// SurfaceVertex is a triangle corner.
type SurfaceVertex struct {
	Pos    math.Vec3
	Normal math.Vec3
	UV     math.Vec2
	Color  math.Vec4
}

// Point is a free dot, or the cap of an open curve chain when Twin
// references that curve.
type Point struct {
	Pos    math.Vec3
	Color  math.Vec4
	Normal math.Vec3
	Mirror Neighbor
	Twin   Neighbor
}

// Curve is a single line segment from A to B. Prev and Next link it into a
// chain; at the ends of an open chain they may reference a Point cap.
// Twin references the surface whose edge the curve strokes.
type Curve struct {
	A, B   Vertex
	Normal math.Vec3
	Prev   Neighbor
	Next   Neighbor
	Mirror Neighbor
	Twin   Neighbor
}

// Surface is a triangle. Edges[0] is the edge V[0]→V[1], Edges[1] is
// V[1]→V[2] and Edges[2] is V[2]→V[0]. Each references the adjacent surface,
// a stroking curve, or nothing.
type Surface struct {
	V      [3]SurfaceVertex
	Edges  [3]Neighbor
	Mirror Neighbor
	Front  bool
}

// Uniforms blend independently of topology.
type Uniforms struct {
	Opacity      float32
	StrokeRadius float32
	DotRadius    float32
	ZClass       int
	Smooth       bool
	Gloss        float32
}

// DefaultUniforms returns the uniforms generators start from.
func DefaultUniforms() Uniforms {
	return Uniforms{
		Opacity:      1,
		StrokeRadius: 0.02,
		DotRadius:    0.04,
	}
}

// Rank is the highest element dimension present in a mesh.
type Rank int

const (
	RankEmpty   Rank = -1
	RankPoint   Rank = 0
	RankCurve   Rank = 1
	RankSurface Rank = 2
)

func (r Rank) String() string {
	switch r {
	case RankEmpty:
		return "empty"
	case RankPoint:
		return "point"
	case RankCurve:
		return "curve"
	case RankSurface:
		return "surface"
	}
	return "unknown"
}

// Mesh is an arena of points, curves and surfaces addressed by Neighbor
// references.
type Mesh struct {
	Points   []Point
	Curves   []Curve
	Surfaces []Surface
	Uniforms Uniforms
	Tags     []float64

	hash   uint64
	hashed bool
}

// New returns an empty mesh with default uniforms.
func New() *Mesh {
	return &Mesh{Uniforms: DefaultUniforms()}
}

// Empty reports whether the mesh has no elements.
func (m *Mesh) Empty() bool {
	return len(m.Points) == 0 && len(m.Curves) == 0 && len(m.Surfaces) == 0
}

// Rank returns the highest non-empty element kind.
func (m *Mesh) Rank() Rank {
	switch {
	case len(m.Surfaces) > 0:
		return RankSurface
	case len(m.Curves) > 0:
		return RankCurve
	case len(m.Points) > 0:
		return RankPoint
	}
	return RankEmpty
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	c := &Mesh{
		Points:   append([]Point(nil), m.Points...),
		Curves:   append([]Curve(nil), m.Curves...),
		Surfaces: append([]Surface(nil), m.Surfaces...),
		Uniforms: m.Uniforms,
		Tags:     append([]float64(nil), m.Tags...),
		hash:     m.hash,
		hashed:   m.hashed,
	}
	return c
}

// Invalidate drops the cached content hash. Every mutating operator calls it.
func (m *Mesh) Invalidate() {
	m.hashed = false
	m.hash = 0
}

// Set replaces m's contents with other's, sharing nothing.
func (m *Mesh) Set(other *Mesh) {
	c := other.Clone()
	*m = *c
}

// CurveStart returns the starting position of a curve.
func (m *Mesh) CurveStart(i int) math.Vec3 { return m.Curves[i].A.Pos }

// CurveEnd returns the ending position of a curve.
func (m *Mesh) CurveEnd(i int) math.Vec3 { return m.Curves[i].B.Pos }

// Counts returns the element counts.
func (m *Mesh) Counts() (points, curves, surfaces int) {
	return len(m.Points), len(m.Curves), len(m.Surfaces)
}

// EdgeVerts returns the start and end vertex indices of surface edge e.
func EdgeVerts(e int) (int, int) {
	return e, (e + 1) % 3
}
