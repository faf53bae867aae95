package match

import (
	"slices"

	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

// polyline is a chain of curve vertices detached from any mesh.
type polyline struct {
	verts    []mesh.Vertex
	closed   bool
	normal   math.Vec3
	caps     [2]bool
	capColor [2]math.Vec4
}

func (p polyline) segments() int {
	if p.closed {
		return len(p.verts)
	}
	return len(p.verts) - 1
}

func (p polyline) positions() []math.Vec3 {
	pts := make([]math.Vec3, len(p.verts))
	for i, v := range p.verts {
		pts[i] = v.Pos
	}
	return pts
}

func (p polyline) centroid() math.Vec3 {
	var c math.Vec3
	for _, v := range p.verts {
		c = c.Add(v.Pos)
	}
	return c.Scale(1 / float32(len(p.verts)))
}

// polylines decomposes the curves of m into detached chains.
func polylines(m *mesh.Mesh) []polyline {
	chains := mesh.Chains(m)
	out := make([]polyline, 0, len(chains))
	for _, ch := range chains {
		first := m.Curves[ch.Curves[0]]
		last := m.Curves[ch.Curves[len(ch.Curves)-1]]
		p := polyline{
			verts:  mesh.ChainVertices(m, ch),
			closed: ch.Closed,
			normal: first.Normal,
		}
		if !ch.Closed {
			if first.Prev.Is(mesh.KindPoint) {
				p.caps[0] = true
				p.capColor[0] = m.Points[first.Prev.Index].Color
			}
			if last.Next.Is(mesh.KindPoint) {
				p.caps[1] = true
				p.capColor[1] = m.Points[last.Next.Index].Color
			}
		}
		out = append(out, p)
	}
	return out
}

func lerpVertex(a, b mesh.Vertex, t float32) mesh.Vertex {
	return mesh.Vertex{Pos: a.Pos.Lerp(b.Pos, t), Color: a.Color.Lerp(b.Color, t)}
}

// allocate splits n pieces over segments in proportion to their lengths.
// Every segment receives at least one piece; leftovers go to the largest
// fractional shares, lower index first on ties.
func allocate(lengths []float32, n int) []int {
	k := make([]int, len(lengths))
	for i := range k {
		k[i] = 1
	}
	spare := n - len(lengths)
	if spare <= 0 {
		return k
	}
	var total float32
	for _, l := range lengths {
		total += l
	}
	weight := func(i int) float32 {
		if total <= 0 {
			return 1 / float32(len(lengths))
		}
		return lengths[i] / total
	}
	frac := make([]float32, len(lengths))
	given := 0
	for i := range lengths {
		ideal := float32(spare) * weight(i)
		whole := int(math32.Floor(ideal))
		k[i] += whole
		given += whole
		frac[i] = ideal - float32(whole)
	}
	order := make([]int, len(lengths))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		switch {
		case frac[x] > frac[y]:
			return -1
		case frac[x] < frac[y]:
			return 1
		}
		return 0
	})
	for i := 0; given < spare; i++ {
		k[order[i%len(order)]]++
		given++
	}
	return k
}

// resample subdivides p into n segments, keeping every original vertex.
func resample(p polyline, n int) polyline {
	segs := p.segments()
	if segs >= n || segs == 0 {
		return p
	}
	next := func(i int) mesh.Vertex { return p.verts[(i+1)%len(p.verts)] }
	lengths := make([]float32, segs)
	for i := range lengths {
		lengths[i] = p.verts[i].Pos.Distance(next(i).Pos)
	}
	k := allocate(lengths, n)
	out := p
	out.verts = make([]mesh.Vertex, 0, n+1)
	for i := range segs {
		for j := range k[i] {
			out.verts = append(out.verts, lerpVertex(p.verts[i], next(i), float32(j)/float32(k[i])))
		}
	}
	if !p.closed {
		out.verts = append(out.verts, p.verts[len(p.verts)-1])
	}
	return out
}

// reversed walks p backwards. A closed loop keeps its first vertex.
func reversed(p polyline) polyline {
	out := p
	out.verts = make([]mesh.Vertex, len(p.verts))
	if p.closed {
		out.verts[0] = p.verts[0]
		for i := 1; i < len(p.verts); i++ {
			out.verts[i] = p.verts[len(p.verts)-i]
		}
		return out
	}
	for i, v := range p.verts {
		out.verts[len(p.verts)-1-i] = v
	}
	out.caps = [2]bool{p.caps[1], p.caps[0]}
	out.capColor = [2]math.Vec4{p.capColor[1], p.capColor[0]}
	return out
}

// doubled turns an open chain into a closed loop that runs out and back.
// Caps are dropped.
func doubled(p polyline) polyline {
	out := polyline{normal: p.normal, closed: true}
	out.verts = append(out.verts, p.verts...)
	for i := len(p.verts) - 2; i >= 1; i-- {
		out.verts = append(out.verts, p.verts[i])
	}
	return out
}

func rotated(p polyline, offset int) polyline {
	if offset == 0 {
		return p
	}
	out := p
	out.verts = make([]mesh.Vertex, len(p.verts))
	for i := range p.verts {
		out.verts[i] = p.verts[(i+offset)%len(p.verts)]
	}
	return out
}

func direction(v, c math.Vec3) math.Vec3 {
	return v.Sub(c).Normalize()
}

// bestOffset finds the cyclic shift of b that best lines it up with a,
// blending positional distance and direction-from-centroid distance.
func bestOffset(a, b polyline, bias float32) int {
	n := len(a.verts)
	ca, cb := a.centroid(), b.centroid()
	best, bestCost := 0, float32(math32.Inf(1))
	for o := range n {
		var cost float32
		for i := range n {
			pa := a.verts[i].Pos
			pb := b.verts[(i+o)%n].Pos
			cost += (1-bias)*pa.DistanceSq(pb) + bias*direction(pa, ca).DistanceSq(direction(pb, cb))
		}
		if cost < bestCost {
			best, bestCost = o, cost
		}
	}
	return best
}

// matchLoopPair makes two closed loops congruent: same winding, same
// segment count and the cheapest alignment.
func matchLoopPair(a, b polyline, bias float32) (polyline, polyline) {
	if math.NewellNormal(a.positions()).Dot(math.NewellNormal(b.positions())) < 0 {
		b = reversed(b)
	}
	n := max(a.segments(), b.segments())
	a = resample(a, n)
	b = resample(b, n)
	return a, rotated(b, bestOffset(a, b, bias))
}

// matchOpenPair makes two open chains congruent. If either has a cap at an
// end, both get one; the added cap is transparent.
func matchOpenPair(a, b polyline) (polyline, polyline) {
	a0, a1 := a.verts[0].Pos, a.verts[len(a.verts)-1].Pos
	b0, b1 := b.verts[0].Pos, b.verts[len(b.verts)-1].Pos
	if a0.Distance(b1)+a1.Distance(b0) < a0.Distance(b0)+a1.Distance(b1) {
		b = reversed(b)
	}
	n := max(a.segments(), b.segments())
	a = resample(a, n)
	b = resample(b, n)
	for end := range 2 {
		if a.caps[end] == b.caps[end] {
			continue
		}
		if !a.caps[end] {
			a.caps[end] = true
			a.capColor[end] = endColor(a, end).WithAlpha(0)
		} else {
			b.caps[end] = true
			b.capColor[end] = endColor(b, end).WithAlpha(0)
		}
	}
	return a, b
}

func endColor(p polyline, end int) math.Vec4 {
	if end == 0 {
		return p.verts[0].Color
	}
	return p.verts[len(p.verts)-1].Color
}

// fadePolyline is the transparent stand-in for p on a side that has nothing
// to match it with.
func fadePolyline(p polyline, idx *nearestIndex) polyline {
	out := p
	out.verts = make([]mesh.Vertex, len(p.verts))
	c := p.centroid()
	for i, v := range p.verts {
		pos := c
		if q, _, ok := idx.find(v.Pos); ok {
			pos = q
		}
		out.verts[i] = mesh.Vertex{Pos: pos, Color: v.Color.WithAlpha(0)}
	}
	out.capColor = [2]math.Vec4{p.capColor[0].WithAlpha(0), p.capColor[1].WithAlpha(0)}
	return out
}

func (mt *Matcher) matchPolylines(a, b polyline) (polyline, polyline) {
	if a.closed != b.closed {
		if !a.closed {
			a = doubled(a)
		} else {
			b = doubled(b)
		}
	}
	if a.closed {
		return matchLoopPair(a, b, mt.opts.LinBias)
	}
	return matchOpenPair(a, b)
}

// emit appends p to the builder as chained curves plus caps.
func emit(b *mesh.Builder, p polyline) {
	segs := p.segments()
	if segs <= 0 {
		return
	}
	idx := make([]int, segs)
	for i := range segs {
		idx[i] = b.AddCurve(mesh.Curve{
			A:      p.verts[i],
			B:      p.verts[(i+1)%len(p.verts)],
			Normal: p.normal,
		})
		if i > 0 {
			b.Chain(idx[i-1], idx[i])
		}
	}
	if p.closed {
		b.Chain(idx[segs-1], idx[0])
		return
	}
	if p.caps[0] {
		b.Point(b.CapStart(idx[0])).Color = p.capColor[0]
	}
	if p.caps[1] {
		b.Point(b.CapEnd(idx[segs-1])).Color = p.capColor[1]
	}
}

// matchLinLin matches two curve layers chain by chain.
func (mt *Matcher) matchLinLin(a, b *mesh.Mesh) (*mesh.Mesh, *mesh.Mesh) {
	pa, pb := polylines(a), polylines(b)
	ca := make([]math.Vec3, len(pa))
	for i, p := range pa {
		ca[i] = p.centroid()
	}
	cb := make([]math.Vec3, len(pb))
	for i, p := range pb {
		cb[i] = p.centroid()
	}

	idxA := newNearestIndex(a.Vertices())
	idxB := newNearestIndex(b.Vertices())
	ba, bb := mesh.NewBuilder(), mesh.NewBuilder()
	for _, pr := range mt.pair(ca, cb) {
		var x, y polyline
		switch {
		case pr.a < 0:
			y = pb[pr.b]
			x = fadePolyline(y, idxA)
		case pr.b < 0:
			x = pa[pr.a]
			y = fadePolyline(x, idxB)
		default:
			x, y = mt.matchPolylines(pa[pr.a], pb[pr.b])
		}
		emit(ba, x)
		emit(bb, y)
	}
	return ba.Mesh(), bb.Mesh()
}
