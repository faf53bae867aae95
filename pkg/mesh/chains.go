package mesh

import "github.com/Faultbox/morphic/pkg/math"

// Chain is a maximal run of curves linked through Next.
type Chain struct {
	Curves []int
	Closed bool
}

// Chains decomposes the curves of m into chains. Open chains come first,
// then closed loops, each group in order of their lowest curve index.
func Chains(m *Mesh) []Chain {
	visited := make([]bool, len(m.Curves))
	var open, closed []Chain
	for start := range m.Curves {
		if visited[start] {
			continue
		}
		// Walk back to the head of an open chain, or all the way around a loop.
		head := start
		isLoop := false
		for steps := 0; steps <= len(m.Curves); steps++ {
			p := m.Curves[head].Prev
			if !p.Is(KindCurve) || visited[p.Index] {
				break
			}
			if p.Index == start {
				isLoop = true
				break
			}
			head = p.Index
		}
		if isLoop {
			head = start
		}

		ch := Chain{}
		cur := head
		for {
			visited[cur] = true
			ch.Curves = append(ch.Curves, cur)
			n := m.Curves[cur].Next
			if !n.Is(KindCurve) {
				break
			}
			if n.Index == head {
				ch.Closed = true
				break
			}
			if visited[n.Index] {
				break
			}
			cur = n.Index
		}
		if ch.Closed {
			closed = append(closed, ch)
		} else {
			open = append(open, ch)
		}
	}
	return append(open, closed...)
}

// ChainPoints returns the vertex positions along ch. A closed chain yields
// one position per curve; an open chain also includes its final endpoint.
func ChainPoints(m *Mesh, ch Chain) []math.Vec3 {
	pts := make([]math.Vec3, 0, len(ch.Curves)+1)
	for _, c := range ch.Curves {
		pts = append(pts, m.Curves[c].A.Pos)
	}
	if !ch.Closed && len(ch.Curves) > 0 {
		pts = append(pts, m.Curves[ch.Curves[len(ch.Curves)-1]].B.Pos)
	}
	return pts
}

// ChainVertices is ChainPoints with colors.
func ChainVertices(m *Mesh, ch Chain) []Vertex {
	vs := make([]Vertex, 0, len(ch.Curves)+1)
	for _, c := range ch.Curves {
		vs = append(vs, m.Curves[c].A)
	}
	if !ch.Closed && len(ch.Curves) > 0 {
		vs = append(vs, m.Curves[ch.Curves[len(ch.Curves)-1]].B)
	}
	return vs
}

// LoopSeparate splits a curve mesh into one mesh per closed loop. It reports
// false when any chain is open.
func LoopSeparate(m *Mesh) ([]*Mesh, bool) {
	chains := Chains(m)
	loops := make([]*Mesh, 0, len(chains))
	for _, ch := range chains {
		if !ch.Closed {
			return nil, false
		}
		b := NewBuilder().Uniforms(m.Uniforms).Tags(m.Tags...)
		first := -1
		prev := -1
		for _, ci := range ch.Curves {
			c := m.Curves[ci]
			c.Prev, c.Next, c.Mirror, c.Twin = None, None, None, None
			idx := b.AddCurve(c)
			if prev >= 0 {
				b.Chain(prev, idx)
			} else {
				first = idx
			}
			prev = idx
		}
		b.Chain(prev, first)
		loops = append(loops, b.Mesh())
	}
	return loops, true
}

// SurfaceEdge returns the edge of surface s that references n, or -1.
func (m *Mesh) SurfaceEdge(s int, n Neighbor) int {
	for e, ref := range m.Surfaces[s].Edges {
		if ref == n {
			return e
		}
	}
	return -1
}

// LinkBoundary chains every curve that strokes a surface edge to the stroke
// of the next boundary edge, found by turning around the shared vertex.
func LinkBoundary(m *Mesh) {
	limit := 2*len(m.Surfaces) + 3
	for ci := range m.Curves {
		twin := m.Curves[ci].Twin
		if !twin.Is(KindSurface) {
			continue
		}
		e := m.SurfaceEdge(twin.Index, CurveAt(ci))
		if e < 0 {
			continue
		}
		cur, edge := twin.Index, (e+1)%3
		for steps := 0; steps < limit; steps++ {
			n := m.Surfaces[cur].Edges[edge]
			if n.Is(KindCurve) {
				if n.Index != ci {
					m.Curves[ci].Next = n
					m.Curves[n.Index].Prev = CurveAt(ci)
				}
				break
			}
			if !n.Is(KindSurface) {
				break
			}
			k := m.BackEdge(n.Index, cur, m.Surfaces[cur].V[edge].Pos)
			if k < 0 {
				break
			}
			cur, edge = n.Index, (k+1)%3
		}
	}
	m.Invalidate()
}

// BackEdge finds the edge of surface s that references surface from and ends
// at pivot. Surfaces sharing more than one edge are told apart by position.
func (m *Mesh) BackEdge(s, from int, pivot math.Vec3) int {
	found := -1
	for k, ref := range m.Surfaces[s].Edges {
		if ref != SurfaceAt(from) {
			continue
		}
		if m.Surfaces[s].V[(k+1)%3].Pos.ApproxEqual(pivot, GeomEpsilon) {
			return k
		}
		if found < 0 {
			found = k
		}
	}
	return found
}
