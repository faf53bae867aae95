package mesh

import "github.com/Faultbox/morphic/pkg/math"

// Transform applies an affine matrix to every position and normal.
func (m *Mesh) Transform(mat math.Mat4) {
	normal := func(n math.Vec3) math.Vec3 {
		return mat.TransformDirection(n).Normalize()
	}
	for i := range m.Points {
		p := &m.Points[i]
		p.Pos = mat.TransformVec3(p.Pos)
		p.Normal = normal(p.Normal)
	}
	for i := range m.Curves {
		c := &m.Curves[i]
		c.A.Pos = mat.TransformVec3(c.A.Pos)
		c.B.Pos = mat.TransformVec3(c.B.Pos)
		c.Normal = normal(c.Normal)
	}
	for i := range m.Surfaces {
		for k := range 3 {
			v := &m.Surfaces[i].V[k]
			v.Pos = mat.TransformVec3(v.Pos)
			v.Normal = normal(v.Normal)
		}
	}
	m.Invalidate()
}

// Shift translates the mesh.
func (m *Mesh) Shift(d math.Vec3) {
	m.Transform(math.Translate(d.X, d.Y, d.Z))
}

// Scale scales the mesh about its centroid.
func (m *Mesh) Scale(s math.Vec3) {
	c, ok := m.Centroid()
	if !ok {
		return
	}
	mat := math.Translate(c.X, c.Y, c.Z).
		Mul(math.Scale(s.X, s.Y, s.Z)).
		Mul(math.Translate(-c.X, -c.Y, -c.Z))
	m.Transform(mat)
}

// Rotate turns the mesh by angle radians about axis through its centroid.
func (m *Mesh) Rotate(axis math.Vec3, angle float32) {
	c, ok := m.Centroid()
	if !ok {
		return
	}
	mat := math.Translate(c.X, c.Y, c.Z).
		Mul(math.RotateAxis(axis, angle)).
		Mul(math.Translate(-c.X, -c.Y, -c.Z))
	m.Transform(mat)
}

// Recolor sets every vertex color, keeping per-vertex alpha.
func (m *Mesh) Recolor(color math.Vec4) {
	m.mapColors(func(c math.Vec4) math.Vec4 { return color.WithAlpha(c.W * color.W) })
}

// SetOpacity sets the opacity uniform.
func (m *Mesh) SetOpacity(opacity float32) {
	m.Uniforms.Opacity = opacity
	m.Invalidate()
}

func (m *Mesh) mapColors(f func(math.Vec4) math.Vec4) {
	for i := range m.Points {
		m.Points[i].Color = f(m.Points[i].Color)
	}
	for i := range m.Curves {
		m.Curves[i].A.Color = f(m.Curves[i].A.Color)
		m.Curves[i].B.Color = f(m.Curves[i].B.Color)
	}
	for i := range m.Surfaces {
		for k := range 3 {
			m.Surfaces[i].V[k].Color = f(m.Surfaces[i].V[k].Color)
		}
	}
	m.Invalidate()
}

// Positions calls fn for every vertex position of m.
func (m *Mesh) Positions(fn func(math.Vec3)) {
	for _, p := range m.Points {
		fn(p.Pos)
	}
	for _, c := range m.Curves {
		fn(c.A.Pos)
		fn(c.B.Pos)
	}
	for _, s := range m.Surfaces {
		for _, v := range s.V {
			fn(v.Pos)
		}
	}
}

// Centroid returns the mean vertex position. It reports false for an empty
// mesh.
func (m *Mesh) Centroid() (math.Vec3, bool) {
	var sum math.Vec3
	n := 0
	m.Positions(func(p math.Vec3) {
		sum = sum.Add(p)
		n++
	})
	if n == 0 {
		return math.Vec3{}, false
	}
	return sum.Scale(1 / float32(n)), true
}

// Bounds returns the axis-aligned bounding box. It reports false for an
// empty mesh.
func (m *Mesh) Bounds() (lo, hi math.Vec3, ok bool) {
	m.Positions(func(p math.Vec3) {
		if !ok {
			lo, hi, ok = p, p, true
			return
		}
		lo = lo.Min(p)
		hi = hi.Max(p)
	})
	return lo, hi, ok
}

// Vertices returns every vertex position of m.
func (m *Mesh) Vertices() []math.Vec3 {
	var out []math.Vec3
	m.Positions(func(p math.Vec3) { out = append(out, p) })
	return out
}

// TwoSided adds a back-facing mirror for every surface. Boundary edges of
// the mirrors are left open; strokes stay on the front faces.
func (m *Mesh) TwoSided() {
	for _, s := range m.Surfaces {
		if !s.Mirror.IsNone() {
			return
		}
	}
	n := len(m.Surfaces)
	flip := func(ref Neighbor) Neighbor {
		if ref.Is(KindSurface) {
			return SurfaceAt(ref.Index + n)
		}
		return None
	}
	for i := range n {
		s := m.Surfaces[i]
		back := Surface{
			V:     [3]SurfaceVertex{s.V[0], s.V[2], s.V[1]},
			Edges: [3]Neighbor{flip(s.Edges[2]), flip(s.Edges[1]), flip(s.Edges[0])},
			Front: !s.Front,
		}
		for k := range 3 {
			back.V[k].Normal = back.V[k].Normal.Scale(-1)
		}
		back.Mirror = SurfaceAt(i)
		m.Surfaces[i].Mirror = SurfaceAt(n + i)
		m.Surfaces = append(m.Surfaces, back)
	}
	m.Invalidate()
}

// StripMirrors removes the back-facing half of every mirror pair and reports
// whether any pair existed.
func (m *Mesh) StripMirrors() bool {
	had := false
	keepPair := func(i int, mirror Neighbor, k Kind, front bool) bool {
		if !mirror.Is(k) {
			return true
		}
		had = true
		if k == KindSurface {
			other := m.Surfaces[mirror.Index]
			if front != other.Front {
				return front
			}
		}
		return i < mirror.Index
	}
	out := Extract(m,
		func(i int) bool { return keepPair(i, m.Points[i].Mirror, KindPoint, false) },
		func(i int) bool { return keepPair(i, m.Curves[i].Mirror, KindCurve, false) },
		func(i int) bool { return keepPair(i, m.Surfaces[i].Mirror, KindSurface, m.Surfaces[i].Front) },
	)
	if had {
		*m = *out
		m.Invalidate()
	}
	return had
}

var (
	firstHalf  = [3][2]int{{0, 0}, {1, 1}, {2, 2}}
	secondHalf = [3][2]int{{1, 0}, {2, 1}, {0, 2}}
)

func midVertex(a, b SurfaceVertex) SurfaceVertex {
	return SurfaceVertex{
		Pos:    a.Pos.Lerp(b.Pos, 0.5),
		Normal: a.Normal.Add(b.Normal).Normalize(),
		UV:     a.UV.Lerp(b.UV, 0.5),
		Color:  a.Color.Lerp(b.Color, 0.5),
	}
}

// Subdivide splits every curve in half and every surface into four.
// Mirrors are rebuilt afterwards when the mesh had them.
func (m *Mesh) Subdivide() {
	mirrored := m.StripMirrors()
	nc := len(m.Curves)

	// Curve i keeps its first half; its second half lands at nc+i.
	second := func(ref Neighbor) Neighbor {
		if ref.Is(KindCurve) {
			return CurveAt(ref.Index + nc)
		}
		return ref
	}
	curves := make([]Curve, 2*nc)
	for i, c := range m.Curves {
		mid := Vertex{Pos: c.A.Pos.Lerp(c.B.Pos, 0.5), Color: c.A.Color.Lerp(c.B.Color, 0.5)}
		curves[i] = Curve{A: c.A, B: mid, Normal: c.Normal, Prev: second(c.Prev), Next: CurveAt(nc + i), Twin: c.Twin}
		curves[nc+i] = Curve{A: mid, B: c.B, Normal: c.Normal, Prev: CurveAt(i), Next: c.Next, Twin: second(c.Twin)}
	}
	for i := range m.Points {
		t := m.Points[i].Twin
		if t.Is(KindCurve) && m.Curves[t.Index].Next == PointAt(i) {
			m.Points[i].Twin = CurveAt(t.Index + nc)
		}
	}

	ns := len(m.Surfaces)
	surfaces := make([]Surface, 4*ns)
	for i, s := range m.Surfaces {
		mids := [3]SurfaceVertex{midVertex(s.V[0], s.V[1]), midVertex(s.V[1], s.V[2]), midVertex(s.V[2], s.V[0])}
		base := 4 * i
		surfaces[base+0] = Surface{V: [3]SurfaceVertex{s.V[0], mids[0], mids[2]}, Front: s.Front}
		surfaces[base+1] = Surface{V: [3]SurfaceVertex{mids[0], s.V[1], mids[1]}, Front: s.Front}
		surfaces[base+2] = Surface{V: [3]SurfaceVertex{mids[2], mids[1], s.V[2]}, Front: s.Front}
		surfaces[base+3] = Surface{V: [3]SurfaceVertex{mids[0], mids[1], mids[2]}, Front: s.Front}
		surfaces[base+0].Edges[1] = SurfaceAt(base + 3)
		surfaces[base+3].Edges[2] = SurfaceAt(base + 0)
		surfaces[base+1].Edges[2] = SurfaceAt(base + 3)
		surfaces[base+3].Edges[0] = SurfaceAt(base + 1)
		surfaces[base+2].Edges[0] = SurfaceAt(base + 3)
		surfaces[base+3].Edges[1] = SurfaceAt(base + 2)

		for e, ref := range s.Edges {
			f, g := firstHalf[e], secondHalf[e]
			switch ref.Kind {
			case KindSurface:
				k := m.BackEdge(ref.Index, i, s.V[e].Pos)
				if k < 0 {
					continue
				}
				jf, jg := firstHalf[k], secondHalf[k]
				surfaces[base+f[0]].Edges[f[1]] = SurfaceAt(4*ref.Index + jg[0])
				surfaces[base+g[0]].Edges[g[1]] = SurfaceAt(4*ref.Index + jf[0])
			case KindCurve:
				lo, hi := ref.Index, ref.Index+nc
				if !m.Curves[ref.Index].A.Pos.ApproxEqual(s.V[e].Pos, GeomEpsilon) {
					lo, hi = hi, lo
				}
				surfaces[base+f[0]].Edges[f[1]] = CurveAt(lo)
				surfaces[base+g[0]].Edges[g[1]] = CurveAt(hi)
				curves[lo].Twin = SurfaceAt(base + f[0])
				curves[hi].Twin = SurfaceAt(base + g[0])
			}
		}
	}
	m.Curves = curves
	m.Surfaces = surfaces
	if mirrored {
		m.TwoSided()
	}
	m.Invalidate()
}
