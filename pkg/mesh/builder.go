package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/math"
)

// Builder assembles a mesh element by element and links the adjacency
// references. The mesh it returns is owned by the caller.
type Builder struct {
	m *Mesh
}

// NewBuilder starts an empty mesh with default uniforms.
func NewBuilder() *Builder {
	return &Builder{m: New()}
}

// AddPoint appends a point and returns its index.
func (b *Builder) AddPoint(p Point) int {
	b.m.Points = append(b.m.Points, p)
	return len(b.m.Points) - 1
}

// AddCurve appends a curve and returns its index.
func (b *Builder) AddCurve(c Curve) int {
	b.m.Curves = append(b.m.Curves, c)
	return len(b.m.Curves) - 1
}

// AddSurface appends a surface and returns its index.
func (b *Builder) AddSurface(s Surface) int {
	b.m.Surfaces = append(b.m.Surfaces, s)
	return len(b.m.Surfaces) - 1
}

// Point returns the point at index i for in-place edits.
func (b *Builder) Point(i int) *Point {
	return &b.m.Points[i]
}

// Chain links curve prev to curve next.
func (b *Builder) Chain(prev, next int) {
	b.m.Curves[prev].Next = CurveAt(next)
	b.m.Curves[next].Prev = CurveAt(prev)
}

// Join links edge ea of surface sa with edge eb of surface sb.
func (b *Builder) Join(sa, ea, sb, eb int) {
	b.m.Surfaces[sa].Edges[ea] = SurfaceAt(sb)
	b.m.Surfaces[sb].Edges[eb] = SurfaceAt(sa)
}

// Stroke makes curve c the stroke of edge e of surface s.
func (b *Builder) Stroke(s, e, c int) {
	b.m.Surfaces[s].Edges[e] = CurveAt(c)
	b.m.Curves[c].Twin = SurfaceAt(s)
}

// CapStart adds a point cap before curve c.
func (b *Builder) CapStart(c int) int {
	cv := b.m.Curves[c]
	p := b.AddPoint(Point{Pos: cv.A.Pos, Color: cv.A.Color, Normal: cv.Normal, Twin: CurveAt(c)})
	b.m.Curves[c].Prev = PointAt(p)
	return p
}

// CapEnd adds a point cap after curve c.
func (b *Builder) CapEnd(c int) int {
	cv := b.m.Curves[c]
	p := b.AddPoint(Point{Pos: cv.B.Pos, Color: cv.B.Color, Normal: cv.Normal, Twin: CurveAt(c)})
	b.m.Curves[c].Next = PointAt(p)
	return p
}

// Polyline appends a chain through pts and returns the curve indices. A
// closed polyline also links the last point back to the first.
func (b *Builder) Polyline(pts []math.Vec3, color math.Vec4, closed bool) []int {
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	if n <= 0 {
		return nil
	}
	normal := math.NewellNormal(pts).Normalize()
	if normal == (math.Vec3{}) {
		normal = math.Vec3{Z: 1}
	}
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		c := b.AddCurve(Curve{
			A:      Vertex{Pos: pts[i], Color: color},
			B:      Vertex{Pos: pts[(i+1)%len(pts)], Color: color},
			Normal: normal,
		})
		if i > 0 {
			b.Chain(idx[i-1], c)
		}
		idx = append(idx, c)
	}
	if closed {
		b.Chain(idx[len(idx)-1], idx[0])
	}
	return idx
}

// Uniforms sets the mesh uniforms.
func (b *Builder) Uniforms(u Uniforms) *Builder {
	b.m.Uniforms = u
	return b
}

// Tags sets the tag path.
func (b *Builder) Tags(tags ...float64) *Builder {
	b.m.Tags = append([]float64(nil), tags...)
	return b
}

// Mesh finalizes the build. The builder must not be used afterwards.
func (b *Builder) Mesh() *Mesh {
	m := b.m
	b.m = nil
	m.Invalidate()
	return m
}

type weldKey [3]int32

const weldScale = 1e4

func keyOf(p math.Vec3) weldKey {
	return weldKey{
		int32(math32.Round(p.X * weldScale)),
		int32(math32.Round(p.Y * weldScale)),
		int32(math32.Round(p.Z * weldScale)),
	}
}

type edgeKey struct{ from, to weldKey }

type edgeRef struct{ surface, edge int }

// FromTriangles builds a surface mesh from a triangle soup, joining
// triangles that share an edge with opposite winding. With stroke set,
// every open edge gets a boundary curve and the curves are chained around
// the boundary.
func FromTriangles(tris [][3]math.Vec3, color math.Vec4, stroke bool) *Mesh {
	soup := make([][3]SurfaceVertex, len(tris))
	for i, t := range tris {
		n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalize()
		for k := range 3 {
			soup[i][k] = SurfaceVertex{Pos: t[k], Normal: n, Color: color}
		}
	}
	return FromSurfaceVertices(soup, stroke)
}

// FromSurfaceVertices is FromTriangles with full per-corner attributes.
func FromSurfaceVertices(tris [][3]SurfaceVertex, stroke bool) *Mesh {
	b := NewBuilder()
	open := make(map[edgeKey]edgeRef, len(tris)*3)
	for _, t := range tris {
		si := b.AddSurface(Surface{V: t, Front: true})
		for e := range 3 {
			from, to := keyOf(t[e].Pos), keyOf(t[(e+1)%3].Pos)
			if from == to {
				continue
			}
			if other, ok := open[edgeKey{to, from}]; ok {
				b.Join(si, e, other.surface, other.edge)
				delete(open, edgeKey{to, from})
				continue
			}
			open[edgeKey{from, to}] = edgeRef{si, e}
		}
	}
	m := b.Mesh()
	if stroke {
		StrokeOpenEdges(m)
	}
	return m
}
