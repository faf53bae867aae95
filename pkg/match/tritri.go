package match

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

// triSource tracks the walk over one input surface mesh.
type triSource struct {
	m      *mesh.Mesh
	out    []int // input surface -> output triangle, -1 while unvisited
	left   int
	center math.Vec3
}

func newTriSource(m *mesh.Mesh) *triSource {
	s := &triSource{m: m, out: make([]int, len(m.Surfaces)), left: len(m.Surfaces)}
	for i := range s.out {
		s.out[i] = -1
	}
	var sum math.Vec3
	for _, sf := range m.Surfaces {
		for _, v := range sf.V {
			sum = sum.Add(v.Pos)
		}
	}
	if n := len(m.Surfaces); n > 0 {
		s.center = sum.Scale(1 / float32(3*n))
	}
	return s
}

func triCentroid(s mesh.Surface) math.Vec3 {
	return s.V[0].Pos.Add(s.V[1].Pos).Add(s.V[2].Pos).Scale(1.0 / 3)
}

// pivot returns the unvisited surface whose centroid is nearest the mean
// centroid of all unvisited surfaces, or -1.
func (s *triSource) pivot() int {
	if s.left == 0 {
		return -1
	}
	var mean math.Vec3
	for i, sf := range s.m.Surfaces {
		if s.out[i] < 0 {
			mean = mean.Add(triCentroid(sf))
		}
	}
	mean = mean.Scale(1 / float32(s.left))
	best, bestDist := -1, float32(math32.Inf(1))
	for i, sf := range s.m.Surfaces {
		if s.out[i] >= 0 {
			continue
		}
		if d := triCentroid(sf).DistanceSq(mean); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// sideTri is one side's geometry for an output triangle. A triangle with no
// source is synthesized: collapsed onto a point or standing flat on an edge.
type sideTri struct {
	v   [3]mesh.SurfaceVertex
	src int
	rot int // output vertex i is source vertex (rot+i)%3
	// stroked synthesized triangles carry their parent's stroke on edges 1
	// and 2, with these per-vertex colors.
	stroked     bool
	strokeColor [3]math.Vec4
}

type outTri struct {
	side  [2]sideTri
	edges [3]mesh.Neighbor
	back  [3]int
}

type outCurve struct {
	v      [2][2]mesh.Vertex
	normal [2]math.Vec3
	tri    int
	edge   int
}

type acrossKind int

const (
	acrossExhausted acrossKind = iota
	acrossUnvisited
	acrossJoined
)

// across describes what lies beyond an output edge on one side.
type across struct {
	kind    acrossKind
	surface int // unvisited: the neighboring input surface
	entry   int // unvisited: its edge shared with the current triangle
	out     int // joined: the output triangle already made from it
	outEdge int
	stroked bool
	color   [2]math.Vec4 // stroke color at the edge's start and end
}

type slot struct{ tri, edge int }

type triWalk struct {
	src    [2]*triSource
	tris   []outTri
	curves []outCurve
	queue  []slot
}

func midSurfaceVertex(a, b mesh.SurfaceVertex) mesh.SurfaceVertex {
	return mesh.SurfaceVertex{
		Pos:    a.Pos.Lerp(b.Pos, 0.5),
		Normal: a.Normal.Add(b.Normal).Normalize(),
		UV:     a.UV.Lerp(b.UV, 0.5),
		Color:  a.Color.Lerp(b.Color, 0.5),
	}
}

// look classifies the far side of output edge k of triangle o on side s.
func (w *triWalk) look(s, o, k int) across {
	st := w.tris[o].side[s]
	if st.src < 0 {
		if st.stroked && k != 0 {
			return across{kind: acrossExhausted, stroked: true, color: [2]math.Vec4{st.strokeColor[k], st.strokeColor[(k+1)%3]}}
		}
		return across{kind: acrossExhausted}
	}
	src := w.src[s]
	sf := src.m.Surfaces[st.src]
	f := (st.rot + k) % 3
	ref := sf.Edges[f]
	switch ref.Kind {
	case mesh.KindSurface:
		g := src.m.BackEdge(ref.Index, st.src, sf.V[f].Pos)
		if g < 0 {
			return across{kind: acrossExhausted}
		}
		if o2 := src.out[ref.Index]; o2 >= 0 {
			rot2 := w.tris[o2].side[s].rot
			return across{kind: acrossJoined, out: o2, outEdge: (g - rot2 + 3) % 3}
		}
		return across{kind: acrossUnvisited, surface: ref.Index, entry: g}
	case mesh.KindCurve:
		c := src.m.Curves[ref.Index]
		col := [2]math.Vec4{c.A.Color, c.B.Color}
		if !c.A.Pos.ApproxEqual(sf.V[f].Pos, mesh.GeomEpsilon) {
			col = [2]math.Vec4{c.B.Color, c.A.Color}
		}
		return across{kind: acrossExhausted, stroked: true, color: col}
	}
	return across{kind: acrossExhausted}
}

func (w *triWalk) link(o, k, o2, k2 int) {
	w.tris[o].edges[k] = mesh.SurfaceAt(o2)
	w.tris[o].back[k] = k2
	w.tris[o2].edges[k2] = mesh.SurfaceAt(o)
	w.tris[o2].back[k2] = k
}

// joinable reports whether edge k of o and edge k2 of o2 coincide, reversed,
// on both sides.
func (w *triWalk) joinable(o, k, o2, k2 int) bool {
	if o == o2 && k == k2 {
		return false
	}
	if !w.tris[o2].edges[k2].IsNone() {
		return false
	}
	for s := range 2 {
		a, b := w.tris[o].side[s], w.tris[o2].side[s]
		if !a.v[k].Pos.ApproxEqual(b.v[(k2+1)%3].Pos, mesh.GeomEpsilon) ||
			!a.v[(k+1)%3].Pos.ApproxEqual(b.v[k2].Pos, mesh.GeomEpsilon) {
			return false
		}
	}
	return true
}

// root starts a new component from a pivot on each side. A side with
// nothing left contributes a triangle collapsed onto its center.
func (w *triWalk) root(pa, pb int) int {
	n := len(w.tris)
	var t outTri
	rot := 0
	if pa >= 0 && pb >= 0 {
		rot = bestRotation(w.src[0].m.Surfaces[pa], w.src[0].center, w.src[1].m.Surfaces[pb], w.src[1].center)
	}
	pivots := [2]int{pa, pb}
	rots := [2]int{0, rot}
	for s, p := range pivots {
		if p < 0 {
			continue
		}
		sf := w.src[s].m.Surfaces[p]
		st := sideTri{src: p, rot: rots[s]}
		for i := range 3 {
			st.v[i] = sf.V[(rots[s]+i)%3]
		}
		t.side[s] = st
		w.src[s].out[p] = n
		w.src[s].left--
	}
	for s, p := range pivots {
		if p >= 0 {
			continue
		}
		other := t.side[1-s]
		st := sideTri{src: -1}
		for i := range 3 {
			st.v[i] = mesh.SurfaceVertex{
				Pos:    w.src[s].center,
				Normal: other.v[i].Normal,
				Color:  other.v[i].Color.WithAlpha(0),
			}
		}
		t.side[s] = st
	}
	w.tris = append(w.tris, t)
	w.queue = append(w.queue, slot{n, 0}, slot{n, 1}, slot{n, 2})
	return n
}

// bestRotation picks the rotation of b's vertices that best matches a's
// relative to each mesh's center.
func bestRotation(a mesh.Surface, ca math.Vec3, b mesh.Surface, cb math.Vec3) int {
	best, bestCost := 0, float32(math32.Inf(1))
	for r := range 3 {
		var cost float32
		for i := range 3 {
			cost += a.V[i].Pos.Sub(ca).DistanceSq(b.V[(r+i)%3].Pos.Sub(cb))
		}
		if cost < bestCost {
			best, bestCost = r, cost
		}
	}
	return best
}

// child grows a new output triangle across edge k of o.
func (w *triWalk) child(o, k int, x [2]across) {
	n := len(w.tris)
	var t outTri
	for s := range 2 {
		par := w.tris[o].side[s]
		p0, p1 := par.v[(k+1)%3], par.v[k]
		if x[s].kind == acrossUnvisited {
			y := w.src[s].m.Surfaces[x[s].surface]
			t.side[s] = sideTri{
				v:   [3]mesh.SurfaceVertex{p0, p1, y.V[(x[s].entry+2)%3]},
				src: x[s].surface,
				rot: x[s].entry,
			}
			w.src[s].out[x[s].surface] = n
			w.src[s].left--
			continue
		}
		st := sideTri{v: [3]mesh.SurfaceVertex{p0, p1, midSurfaceVertex(p0, p1)}, src: -1}
		if x[s].stroked {
			c := x[s].color
			st.stroked = true
			st.strokeColor = [3]math.Vec4{c[1], c[0], c[0].Lerp(c[1], 0.5)}
		}
		t.side[s] = st
	}
	w.tris = append(w.tris, t)
	w.link(o, k, n, 0)
	w.queue = append(w.queue, slot{n, 1}, slot{n, 2})
}

// boundary closes edge k of o with a stroke curve. A side without a stroke
// borrows the other side's colors, made transparent.
func (w *triWalk) boundary(o, k int, x [2]across) {
	ci := len(w.curves)
	oc := outCurve{tri: o, edge: k}
	for s := range 2 {
		col := x[s].color
		if !x[s].stroked {
			other := x[1-s].color
			col = [2]math.Vec4{other[0].WithAlpha(0), other[1].WithAlpha(0)}
		}
		st := w.tris[o].side[s]
		a, b := st.v[k], st.v[(k+1)%3]
		oc.v[s] = [2]mesh.Vertex{{Pos: a.Pos, Color: col[0]}, {Pos: b.Pos, Color: col[1]}}
		oc.normal[s] = a.Normal
	}
	w.curves = append(w.curves, oc)
	w.tris[o].edges[k] = mesh.CurveAt(ci)
}

func (w *triWalk) drain() {
	for len(w.queue) > 0 {
		sl := w.queue[0]
		w.queue = w.queue[1:]
		o, k := sl.tri, sl.edge
		if !w.tris[o].edges[k].IsNone() {
			continue
		}
		x := [2]across{w.look(0, o, k), w.look(1, o, k)}
		if x[0].kind == acrossJoined && x[1].kind == acrossJoined &&
			x[0].out == x[1].out && x[0].outEdge == x[1].outEdge &&
			w.joinable(o, k, x[0].out, x[0].outEdge) {
			w.link(o, k, x[0].out, x[0].outEdge)
			continue
		}
		for s := range 2 {
			if x[s].kind == acrossJoined {
				x[s] = across{kind: acrossExhausted}
			}
		}
		if x[0].kind == acrossExhausted && x[1].kind == acrossExhausted {
			if x[0].stroked || x[1].stroked {
				w.boundary(o, k, x)
			}
			continue
		}
		w.child(o, k, x)
	}
}

// chainCurves links the boundary curves by turning around each curve's end
// vertex. It works on the shared topology so both sides get the same links.
func (w *triWalk) chainCurves() (prev, next []mesh.Neighbor) {
	prev = make([]mesh.Neighbor, len(w.curves))
	next = make([]mesh.Neighbor, len(w.curves))
	limit := 2*len(w.tris) + 3
	for ci, c := range w.curves {
		cur, e := c.tri, (c.edge+1)%3
		for range limit {
			ref := w.tris[cur].edges[e]
			if ref.Is(mesh.KindCurve) {
				if ref.Index != ci && next[ci].IsNone() && prev[ref.Index].IsNone() {
					next[ci] = ref
					prev[ref.Index] = mesh.CurveAt(ci)
				}
				break
			}
			if !ref.Is(mesh.KindSurface) {
				break
			}
			cur, e = ref.Index, (w.tris[cur].back[e]+1)%3
		}
	}
	return prev, next
}

func (w *triWalk) build(s int, prev, next []mesh.Neighbor) *mesh.Mesh {
	m := &mesh.Mesh{
		Surfaces: make([]mesh.Surface, len(w.tris)),
		Curves:   make([]mesh.Curve, len(w.curves)),
	}
	for i, t := range w.tris {
		m.Surfaces[i] = mesh.Surface{V: t.side[s].v, Edges: t.edges, Front: true}
	}
	for i, c := range w.curves {
		m.Curves[i] = mesh.Curve{
			A:      c.v[s][0],
			B:      c.v[s][1],
			Normal: c.normal[s],
			Prev:   prev[i],
			Next:   next[i],
			Twin:   mesh.SurfaceAt(c.tri),
		}
	}
	return m
}

// matchTriTri walks both surface meshes breadth first from central pivots,
// emitting one output triangle per step for both sides at once. Where one
// side runs out of surfaces, it contributes flat triangles standing on the
// edge it stopped at, so the other side's remaining faces spread along that
// edge. Stroked input edges become boundary curves.
func matchTriTri(a, b *mesh.Mesh) (*mesh.Mesh, *mesh.Mesh) {
	w := &triWalk{src: [2]*triSource{newTriSource(a), newTriSource(b)}}
	for w.src[0].left > 0 || w.src[1].left > 0 {
		w.root(w.src[0].pivot(), w.src[1].pivot())
		w.drain()
	}
	prev, next := w.chainCurves()
	return w.build(0, prev, next), w.build(1, prev, next)
}
