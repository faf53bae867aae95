package mesh

// Extract copies the elements selected by the keep functions into a new
// mesh, renumbering references. References to dropped elements become None.
// Nil keep functions drop every element of that kind.
func Extract(m *Mesh, keepPoint, keepCurve, keepSurface func(i int) bool) *Mesh {
	pts := indexTable(len(m.Points), keepPoint)
	crv := indexTable(len(m.Curves), keepCurve)
	srf := indexTable(len(m.Surfaces), keepSurface)

	out := &Mesh{Uniforms: m.Uniforms, Tags: append([]float64(nil), m.Tags...)}
	for i, p := range m.Points {
		if pts[i] < 0 {
			continue
		}
		p.Mirror = p.Mirror.remap(pts, crv, srf)
		p.Twin = p.Twin.remap(pts, crv, srf)
		out.Points = append(out.Points, p)
	}
	for i, c := range m.Curves {
		if crv[i] < 0 {
			continue
		}
		c.Prev = c.Prev.remap(pts, crv, srf)
		c.Next = c.Next.remap(pts, crv, srf)
		c.Mirror = c.Mirror.remap(pts, crv, srf)
		c.Twin = c.Twin.remap(pts, crv, srf)
		out.Curves = append(out.Curves, c)
	}
	for i, s := range m.Surfaces {
		if srf[i] < 0 {
			continue
		}
		for e := range s.Edges {
			s.Edges[e] = s.Edges[e].remap(pts, crv, srf)
		}
		s.Mirror = s.Mirror.remap(pts, crv, srf)
		out.Surfaces = append(out.Surfaces, s)
	}
	return out
}

func indexTable(n int, keep func(int) bool) []int {
	table := make([]int, n)
	next := 0
	for i := range table {
		if keep != nil && keep(i) {
			table[i] = next
			next++
		} else {
			table[i] = -1
		}
	}
	return table
}

func all(int) bool { return true }

// SurfaceLayer returns the surfaces of m together with the curves that
// stroke them.
func SurfaceLayer(m *Mesh) *Mesh {
	return Extract(m, nil, func(i int) bool {
		return m.Curves[i].Twin.Is(KindSurface)
	}, all)
}

// CurveLayer returns the free curves of m (those not stroking a surface)
// together with their point caps.
func CurveLayer(m *Mesh) *Mesh {
	free := func(i int) bool { return !m.Curves[i].Twin.Is(KindSurface) }
	return Extract(m, func(i int) bool {
		t := m.Points[i].Twin
		return t.Is(KindCurve) && t.Index < len(m.Curves) && free(t.Index)
	}, free, nil)
}

// PointLayer returns the free points of m.
func PointLayer(m *Mesh) *Mesh {
	return Extract(m, func(i int) bool {
		return !m.Points[i].Twin.Is(KindCurve)
	}, nil, nil)
}

// Layers splits m into its surface, curve and point layers.
func Layers(m *Mesh) (surfaces, curves, points *Mesh) {
	return SurfaceLayer(m), CurveLayer(m), PointLayer(m)
}

// Merge concatenates meshes, offsetting their references. Uniforms and tags
// are taken from the first non-nil part.
func Merge(parts ...*Mesh) *Mesh {
	out := &Mesh{}
	first := true
	for _, p := range parts {
		if p == nil {
			continue
		}
		if first {
			out.Uniforms = p.Uniforms
			out.Tags = append([]float64(nil), p.Tags...)
			first = false
		}
		np, nc, ns := out.Counts()
		for _, pt := range p.Points {
			pt.Mirror = pt.Mirror.shift(np, nc, ns)
			pt.Twin = pt.Twin.shift(np, nc, ns)
			out.Points = append(out.Points, pt)
		}
		for _, c := range p.Curves {
			c.Prev = c.Prev.shift(np, nc, ns)
			c.Next = c.Next.shift(np, nc, ns)
			c.Mirror = c.Mirror.shift(np, nc, ns)
			c.Twin = c.Twin.shift(np, nc, ns)
			out.Curves = append(out.Curves, c)
		}
		for _, s := range p.Surfaces {
			for e := range s.Edges {
				s.Edges[e] = s.Edges[e].shift(np, nc, ns)
			}
			s.Mirror = s.Mirror.shift(np, nc, ns)
			out.Surfaces = append(out.Surfaces, s)
		}
	}
	if first {
		out.Uniforms = DefaultUniforms()
	}
	return out
}
