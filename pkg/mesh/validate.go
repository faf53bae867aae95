package mesh

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/morphic/pkg/math"
)

// GeomEpsilon is the tolerance for shared-vertex checks.
const GeomEpsilon = 1e-4

// ErrInvalid is wrapped by every invariant violation reported by Validate.
var ErrInvalid = errors.New("mesh invariant violated")

// Validate checks the adjacency and geometric invariants of m and returns
// every violation found, combined with multierr.
func Validate(m *Mesh) error {
	v := validator{m: m}
	v.points()
	v.curves()
	v.surfaces()
	return v.err
}

type validator struct {
	m   *Mesh
	err error
}

func (v *validator) fail(format string, args ...any) {
	v.err = multierr.Append(v.err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
}

func (v *validator) inRange(n Neighbor) bool {
	switch n.Kind {
	case KindNone:
		return true
	case KindPoint:
		return n.Index >= 0 && n.Index < len(v.m.Points)
	case KindCurve:
		return n.Index >= 0 && n.Index < len(v.m.Curves)
	case KindSurface:
		return n.Index >= 0 && n.Index < len(v.m.Surfaces)
	}
	return false
}

// check verifies n is in range and of an allowed kind. None is always allowed.
func (v *validator) check(owner string, i int, field string, n Neighbor, kinds ...Kind) bool {
	if !v.inRange(n) {
		v.fail("%s %d %s %v out of range", owner, i, field, n)
		return false
	}
	if n.IsNone() {
		return true
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	v.fail("%s %d %s %v has unexpected kind", owner, i, field, n)
	return false
}

func near(a, b math.Vec3) bool {
	return a.ApproxEqual(b, GeomEpsilon)
}

func (v *validator) points() {
	m := v.m
	for i, p := range m.Points {
		if v.check("point", i, "mirror", p.Mirror, KindPoint) && p.Mirror.Is(KindPoint) {
			if m.Points[p.Mirror.Index].Mirror != PointAt(i) {
				v.fail("point %d mirror is not an involution", i)
			}
		}
		if v.check("point", i, "twin", p.Twin, KindCurve) && p.Twin.Is(KindCurve) {
			c := m.Curves[p.Twin.Index]
			if c.Prev != PointAt(i) && c.Next != PointAt(i) {
				v.fail("point %d caps curve %d which does not reference it", i, p.Twin.Index)
			}
		}
	}
}

func (v *validator) curves() {
	m := v.m
	for i, c := range m.Curves {
		if v.check("curve", i, "next", c.Next, KindCurve, KindPoint) {
			switch c.Next.Kind {
			case KindCurve:
				n := m.Curves[c.Next.Index]
				if n.Prev != CurveAt(i) {
					v.fail("curve %d next %d does not link back", i, c.Next.Index)
				}
				if !near(c.B.Pos, n.A.Pos) {
					v.fail("curve %d end does not meet curve %d start", i, c.Next.Index)
				}
			case KindPoint:
				if m.Points[c.Next.Index].Twin != CurveAt(i) {
					v.fail("curve %d end cap %d does not reference it", i, c.Next.Index)
				}
			}
		}
		if v.check("curve", i, "prev", c.Prev, KindCurve, KindPoint) {
			switch c.Prev.Kind {
			case KindCurve:
				if m.Curves[c.Prev.Index].Next != CurveAt(i) {
					v.fail("curve %d prev %d does not link forward", i, c.Prev.Index)
				}
			case KindPoint:
				if m.Points[c.Prev.Index].Twin != CurveAt(i) {
					v.fail("curve %d start cap %d does not reference it", i, c.Prev.Index)
				}
			}
		}
		if v.check("curve", i, "mirror", c.Mirror, KindCurve) && c.Mirror.Is(KindCurve) {
			if m.Curves[c.Mirror.Index].Mirror != CurveAt(i) {
				v.fail("curve %d mirror is not an involution", i)
			}
		}
		if v.check("curve", i, "twin", c.Twin, KindSurface, KindCurve) {
			switch c.Twin.Kind {
			case KindSurface:
				s := m.Surfaces[c.Twin.Index]
				e := m.SurfaceEdge(c.Twin.Index, CurveAt(i))
				if e < 0 {
					v.fail("curve %d strokes surface %d which does not reference it", i, c.Twin.Index)
					break
				}
				a, b := EdgeVerts(e)
				fwd := near(c.A.Pos, s.V[a].Pos) && near(c.B.Pos, s.V[b].Pos)
				rev := near(c.A.Pos, s.V[b].Pos) && near(c.B.Pos, s.V[a].Pos)
				if !fwd && !rev {
					v.fail("curve %d does not lie on edge %d of surface %d", i, e, c.Twin.Index)
				}
			case KindCurve:
				if m.Curves[c.Twin.Index].Twin != CurveAt(i) {
					v.fail("curve %d twin %d does not link back", i, c.Twin.Index)
				}
			}
		}
	}
}

func (v *validator) surfaces() {
	m := v.m
	for i, s := range m.Surfaces {
		for e, ref := range s.Edges {
			if !v.check("surface", i, fmt.Sprintf("edge %d", e), ref, KindSurface, KindCurve) {
				continue
			}
			switch ref.Kind {
			case KindSurface:
				k := m.BackEdge(ref.Index, i, s.V[e].Pos)
				if k < 0 {
					v.fail("surface %d edge %d neighbor %d does not link back", i, e, ref.Index)
					break
				}
				o := m.Surfaces[ref.Index]
				a, b := EdgeVerts(e)
				oa, ob := EdgeVerts(k)
				if !near(s.V[a].Pos, o.V[ob].Pos) || !near(s.V[b].Pos, o.V[oa].Pos) {
					v.fail("surface %d edge %d does not match surface %d edge %d", i, e, ref.Index, k)
				}
			case KindCurve:
				if m.Curves[ref.Index].Twin != SurfaceAt(i) {
					v.fail("surface %d edge %d stroke %d does not reference it", i, e, ref.Index)
				}
			}
		}
		if v.check("surface", i, "mirror", s.Mirror, KindSurface) && s.Mirror.Is(KindSurface) {
			o := m.Surfaces[s.Mirror.Index]
			if o.Mirror != SurfaceAt(i) {
				v.fail("surface %d mirror is not an involution", i)
			}
			if o.Front == s.Front {
				v.fail("surface %d and its mirror share orientation", i)
			}
		}
	}
}
