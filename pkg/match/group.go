package match

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

// Assign maps every element of a set of size larger onto an element of a
// set of size smaller in balanced contiguous runs: each smaller-set slot
// receives ⌊larger/smaller⌋ or ⌈larger/smaller⌉ assignees.
func Assign(larger, smaller int) []int {
	if smaller <= 0 || larger <= 0 {
		return nil
	}
	out := make([]int, larger)
	for x := range out {
		out[x] = x * smaller / larger
	}
	return out
}

// pairing links an element of side a to one of side b. A negative index
// stands for an empty partner.
type pairing struct {
	a, b int
}

// pair resolves the pairing of two sets described by their centroids
// according to the group policy. Every element of both sets appears in at
// least one pairing.
func (mt *Matcher) pair(ca, cb []math.Vec3) []pairing {
	na, nb := len(ca), len(cb)
	switch {
	case na == 0 && nb == 0:
		return nil
	case na == 0:
		out := make([]pairing, nb)
		for i := range out {
			out[i] = pairing{-1, i}
		}
		return out
	case nb == 0:
		out := make([]pairing, na)
		for i := range out {
			out[i] = pairing{i, -1}
		}
		return out
	}

	swap := na < nb
	large, small := ca, cb
	if swap {
		large, small = cb, ca
	}
	var assign []int
	if mt.opts.GroupPolicy == NearestCentroid {
		assign = nearestAssign(large, small)
	} else {
		assign = Assign(len(large), len(small))
	}

	out := make([]pairing, 0, len(large))
	used := make([]bool, len(small))
	for x, y := range assign {
		used[y] = true
		if swap {
			out = append(out, pairing{y, x})
		} else {
			out = append(out, pairing{x, y})
		}
	}
	for y, ok := range used {
		if ok {
			continue
		}
		if swap {
			out = append(out, pairing{y, -1})
		} else {
			out = append(out, pairing{-1, y})
		}
	}
	return out
}

func nearestAssign(large, small []math.Vec3) []int {
	idx := newNearestIndex(small)
	out := make([]int, len(large))
	for i, c := range large {
		_, j, ok := idx.find(c)
		if !ok {
			j = i * len(small) / len(large)
		}
		out[i] = j
	}
	return out
}

// MatchGroup pairs two sets of meshes and matches each pair. The returned
// slices have one entry per pairing: the previous shape, a buffer for the
// interpolated shape, and the target shape. An empty set is matched against
// empty meshes so its partners fade in or out.
func (mt *Matcher) MatchGroup(as, bs []*mesh.Mesh) (prev, cur, target []*mesh.Mesh, err error) {
	ca := centroids(as)
	cb := centroids(bs)
	pairs := mt.pair(ca, cb)
	mt.log.Debug("match group",
		zap.Int("a", len(as)),
		zap.Int("b", len(bs)),
		zap.Int("pairs", len(pairs)),
		zap.Stringer("policy", mt.opts.GroupPolicy),
	)
	for i, p := range pairs {
		a, b := pick(as, p.a), pick(bs, p.b)
		if p.a < 0 {
			a.Uniforms = b.Uniforms
		}
		if p.b < 0 {
			b.Uniforms = a.Uniforms
		}
		dump := mesh.New()
		if err := mt.MatchMesh(a, dump, b); err != nil {
			return nil, nil, nil, fmt.Errorf("group pair %d: %w", i, err)
		}
		prev = append(prev, a)
		cur = append(cur, dump)
		target = append(target, b)
	}
	return prev, cur, target, nil
}

func pick(ms []*mesh.Mesh, i int) *mesh.Mesh {
	if i < 0 || ms[i] == nil {
		return mesh.New()
	}
	return ms[i].Clone()
}

func centroids(ms []*mesh.Mesh) []math.Vec3 {
	out := make([]math.Vec3, len(ms))
	for i, m := range ms {
		if m != nil {
			out[i], _ = m.Centroid()
		}
	}
	return out
}
