package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/morphic/pkg/math"
)

// ErrIncongruent is returned when interpolating meshes whose element counts
// differ.
var ErrIncongruent = errors.New("meshes are not congruent")

// Lerp writes the interpolation of a toward b at t into dst. All three must
// be congruent. A non-zero arc moves positions along a circular path turning
// arc radians about +Z. At t <= 0 dst becomes a copy of a and at t >= 1 a
// copy of b.
func Lerp(dst, a, b *Mesh, t, arc float32) error {
	if len(a.Points) != len(b.Points) || len(a.Curves) != len(b.Curves) || len(a.Surfaces) != len(b.Surfaces) {
		return fmt.Errorf("lerp: %w: (%d,%d,%d) vs (%d,%d,%d)", ErrIncongruent,
			len(a.Points), len(a.Curves), len(a.Surfaces),
			len(b.Points), len(b.Curves), len(b.Surfaces))
	}
	if t <= 0 {
		dst.Set(a)
		return nil
	}
	if t >= 1 {
		dst.Set(b)
		return nil
	}
	if len(dst.Points) != len(a.Points) || len(dst.Curves) != len(a.Curves) || len(dst.Surfaces) != len(a.Surfaces) {
		dst.Set(a)
	}

	pos := func(p, q math.Vec3) math.Vec3 {
		if arc != 0 {
			return math.ArcLerp(p, q, arc, t)
		}
		return p.Lerp(q, t)
	}
	normal := func(p, q math.Vec3) math.Vec3 {
		n := p.Lerp(q, t).Normalize()
		if n == (math.Vec3{}) {
			return q
		}
		return n
	}
	vertex := func(p, q Vertex) Vertex {
		return Vertex{Pos: pos(p.Pos, q.Pos), Color: p.Color.Lerp(q.Color, t)}
	}

	for i := range a.Points {
		pa, pb := a.Points[i], b.Points[i]
		d := &dst.Points[i]
		d.Pos = pos(pa.Pos, pb.Pos)
		d.Color = pa.Color.Lerp(pb.Color, t)
		d.Normal = normal(pa.Normal, pb.Normal)
		d.Mirror, d.Twin = pa.Mirror, pa.Twin
	}
	for i := range a.Curves {
		ca, cb := a.Curves[i], b.Curves[i]
		d := &dst.Curves[i]
		d.A = vertex(ca.A, cb.A)
		d.B = vertex(ca.B, cb.B)
		d.Normal = normal(ca.Normal, cb.Normal)
		d.Prev, d.Next, d.Mirror, d.Twin = ca.Prev, ca.Next, ca.Mirror, ca.Twin
	}
	for i := range a.Surfaces {
		sa, sb := a.Surfaces[i], b.Surfaces[i]
		d := &dst.Surfaces[i]
		for k := range 3 {
			va, vb := sa.V[k], sb.V[k]
			d.V[k] = SurfaceVertex{
				Pos:    pos(va.Pos, vb.Pos),
				Normal: normal(va.Normal, vb.Normal),
				UV:     va.UV.Lerp(vb.UV, t),
				Color:  va.Color.Lerp(vb.Color, t),
			}
		}
		d.Edges, d.Mirror, d.Front = sa.Edges, sa.Mirror, sa.Front
	}
	dst.Uniforms = LerpUniforms(a.Uniforms, b.Uniforms, t)
	if t < 0.5 {
		dst.Tags = append(dst.Tags[:0], a.Tags...)
	} else {
		dst.Tags = append(dst.Tags[:0], b.Tags...)
	}
	dst.Invalidate()
	return nil
}

// LerpUniforms blends the continuous uniforms and switches the discrete ones
// at the halfway point.
func LerpUniforms(a, b Uniforms, t float32) Uniforms {
	u := Uniforms{
		Opacity:      math.Lerp(a.Opacity, b.Opacity, t),
		StrokeRadius: math.Lerp(a.StrokeRadius, b.StrokeRadius, t),
		DotRadius:    math.Lerp(a.DotRadius, b.DotRadius, t),
		Gloss:        math.Lerp(a.Gloss, b.Gloss, t),
		ZClass:       a.ZClass,
		Smooth:       a.Smooth,
	}
	if t >= 0.5 {
		u.ZClass = b.ZClass
		u.Smooth = b.Smooth
	}
	return u
}
