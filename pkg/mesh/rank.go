package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/morphic/pkg/math"
)

var (
	// ErrRank is wrapped by every rank precondition failure.
	ErrRank = errors.New("rank precondition failed")
	// ErrAlreadySurface is returned when promoting a mesh that has surfaces.
	ErrAlreadySurface = errors.New("mesh already has surfaces")
	// ErrRankUnderflow is returned when demoting a mesh with nothing above points.
	ErrRankUnderflow = errors.New("mesh has no rank to drop")
	// ErrHasSurfaces is returned by operators that only accept curves and points.
	ErrHasSurfaces = errors.New("operator does not accept surfaces")
)

// RankError reports an operator applied to a mesh of the wrong rank.
type RankError struct {
	Op   string
	Rank Rank
	Err  error
}

func (e *RankError) Error() string {
	return fmt.Sprintf("%s: %s mesh: %v", e.Op, e.Rank, e.Err)
}

// Unwrap exposes both ErrRank and the specific cause.
func (e *RankError) Unwrap() []error {
	return []error{ErrRank, e.Err}
}

// RequireNoSurfaces fails with a *RankError when m has surfaces.
func RequireNoSurfaces(m *Mesh, op string) error {
	if len(m.Surfaces) > 0 {
		return &RankError{Op: op, Rank: m.Rank(), Err: ErrHasSurfaces}
	}
	return nil
}

// Uprank promotes m by one rank. Points become zero-length closed curves and
// curve chains become transparent fans stroked by the original curves. A
// mesh with surfaces is an error unless force is set, in which case a copy
// is returned unchanged.
func Uprank(m *Mesh, force bool) (*Mesh, error) {
	switch m.Rank() {
	case RankSurface:
		if !force {
			return nil, &RankError{Op: "uprank", Rank: RankSurface, Err: ErrAlreadySurface}
		}
		return m.Clone(), nil
	case RankEmpty:
		return m.Clone(), nil
	case RankPoint:
		return pointsToLoops(m), nil
	}
	return curvesToFans(m), nil
}

func pointsToLoops(m *Mesh) *Mesh {
	b := NewBuilder().Uniforms(m.Uniforms).Tags(m.Tags...)
	for _, p := range m.Points {
		v := Vertex{Pos: p.Pos, Color: p.Color}
		c := b.AddCurve(Curve{A: v, B: v, Normal: p.Normal})
		b.Chain(c, c)
	}
	return b.Mesh()
}

func curvesToFans(m *Mesh) *Mesh {
	b := NewBuilder().Uniforms(m.Uniforms).Tags(m.Tags...)
	for _, ch := range Chains(m) {
		verts := ChainVertices(m, ch)
		pts := ChainPoints(m, ch)
		var center math.Vec3
		var color math.Vec4
		for _, v := range verts {
			center = center.Add(v.Pos)
			color = color.Add(v.Color)
		}
		center = center.Scale(1 / float32(len(verts)))
		color = color.Scale(1 / float32(len(verts))).WithAlpha(0)
		normal := math.NewellNormal(pts).Normalize()
		if normal == (math.Vec3{}) {
			normal = m.Curves[ch.Curves[0]].Normal
		}

		curves := make([]int, len(ch.Curves))
		tris := make([]int, len(ch.Curves))
		for i, ci := range ch.Curves {
			c := m.Curves[ci]
			c.Prev, c.Next, c.Mirror, c.Twin = None, None, None, None
			curves[i] = b.AddCurve(c)
			hub := SurfaceVertex{Pos: center, Normal: normal, Color: color}
			tris[i] = b.AddSurface(Surface{
				V: [3]SurfaceVertex{
					hub,
					{Pos: c.A.Pos, Normal: normal, Color: c.A.Color.WithAlpha(0)},
					{Pos: c.B.Pos, Normal: normal, Color: c.B.Color.WithAlpha(0)},
				},
				Front: true,
			})
			b.Stroke(tris[i], 1, curves[i])
			if i > 0 {
				b.Chain(curves[i-1], curves[i])
				b.Join(tris[i-1], 2, tris[i], 0)
			}
		}
		if ch.Closed {
			last := len(ch.Curves) - 1
			b.Chain(curves[last], curves[0])
			b.Join(tris[last], 2, tris[0], 0)
		}
	}
	for _, p := range PointLayer(m).Points {
		p.Mirror = None
		b.AddPoint(p)
	}
	return b.Mesh()
}

// Downrank demotes m by one rank. Surfaces collapse to their boundary
// curves, and curves collapse to one point per chain vertex. A mesh of
// points (or nothing) cannot be demoted.
func Downrank(m *Mesh) (*Mesh, error) {
	switch m.Rank() {
	case RankSurface:
		return boundaryOf(m), nil
	case RankCurve:
		return chainVertices(m), nil
	}
	return nil, &RankError{Op: "downrank", Rank: m.Rank(), Err: ErrRankUnderflow}
}

func boundaryOf(m *Mesh) *Mesh {
	c := m.Clone()
	StrokeOpenEdges(c)
	out := Extract(c, all, all, nil)
	out.Invalidate()
	return out
}

// StrokeOpenEdges adds a boundary curve to every surface edge that has no
// neighbor and chains the boundary.
func StrokeOpenEdges(m *Mesh) {
	added := false
	for si := range m.Surfaces {
		for e := range 3 {
			if !m.Surfaces[si].Edges[e].IsNone() {
				continue
			}
			a, b := EdgeVerts(e)
			sv := m.Surfaces[si].V
			m.Curves = append(m.Curves, Curve{
				A:      Vertex{Pos: sv[a].Pos, Color: sv[a].Color},
				B:      Vertex{Pos: sv[b].Pos, Color: sv[b].Color},
				Normal: sv[a].Normal,
				Twin:   SurfaceAt(si),
			})
			m.Surfaces[si].Edges[e] = CurveAt(len(m.Curves) - 1)
			added = true
		}
	}
	if added {
		LinkBoundary(m)
	}
	m.Invalidate()
}

func chainVertices(m *Mesh) *Mesh {
	b := NewBuilder().Uniforms(m.Uniforms).Tags(m.Tags...)
	for _, ch := range Chains(m) {
		normal := m.Curves[ch.Curves[0]].Normal
		for _, v := range ChainVertices(m, ch) {
			b.AddPoint(Point{Pos: v.Pos, Color: v.Color, Normal: normal})
		}
	}
	for _, p := range PointLayer(m).Points {
		p.Mirror = None
		b.AddPoint(p)
	}
	return b.Mesh()
}
