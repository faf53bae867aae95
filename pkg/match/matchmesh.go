package match

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/morphic/pkg/mesh"
)

// TopologiesMatch reports whether a and b are already congruent.
func TopologiesMatch(a, b *mesh.Mesh) bool {
	if a.TopologyHash() != b.TopologyHash() {
		return false
	}
	return mesh.SameTopology(a, b)
}

// MatchMesh rewrites a and b into congruent meshes with the same visual
// content and sets dump to a congruent copy of a, ready to receive
// interpolated vertex data. Nothing is modified when matching fails.
func (mt *Matcher) MatchMesh(a, dump, b *mesh.Mesh) error {
	if TopologiesMatch(a, b) {
		mt.log.Debug("match strategy", zap.String("strategy", "identity"))
		if !mesh.SameTopology(dump, a) {
			dump.Set(a)
		}
		return nil
	}

	oa, ob := mt.match(a, b)
	oa.Uniforms, ob.Uniforms = a.Uniforms, b.Uniforms
	oa.Tags = append([]float64(nil), a.Tags...)
	ob.Tags = append([]float64(nil), b.Tags...)
	oa.Invalidate()
	ob.Invalidate()

	if mt.opts.CheckInvariants {
		if err := mt.check(oa, ob); err != nil {
			return err
		}
	}
	a.Set(oa)
	b.Set(ob)
	dump.Set(oa)
	return nil
}

func (mt *Matcher) match(a, b *mesh.Mesh) (*mesh.Mesh, *mesh.Mesh) {
	ca, cb := a.Clone(), b.Clone()
	mirroredA := ca.StripMirrors()
	mirroredB := cb.StripMirrors()

	oa, ob, ok := mt.matchPlanar(ca, cb)
	if !ok {
		oa, ob = mt.matchLayers(ca, cb)
	}
	if mirroredA || mirroredB {
		oa.TwoSided()
		ob.TwoSided()
	}
	return oa, ob
}

// layerSet holds a mesh's layers indexed by rank.
type layerSet [3]*mesh.Mesh

func layersOf(m *mesh.Mesh) layerSet {
	s, c, p := mesh.Layers(m)
	return layerSet{mesh.RankPoint: p, mesh.RankCurve: c, mesh.RankSurface: s}
}

func (l layerSet) top() mesh.Rank {
	for r := mesh.RankSurface; r >= mesh.RankPoint; r-- {
		if !l[r].Empty() {
			return r
		}
	}
	return mesh.RankEmpty
}

// matchLayers matches the highest layer of each mesh against the other's,
// then pairs the remaining layers rank by rank.
func (mt *Matcher) matchLayers(a, b *mesh.Mesh) (*mesh.Mesh, *mesh.Mesh) {
	la, lb := layersOf(a), layersOf(b)
	ra, rb := la.top(), lb.top()
	swapped := ra < rb
	if swapped {
		a, b = b, a
		la, lb = lb, la
		ra, rb = rb, ra
	}
	if ra == mesh.RankEmpty {
		return mesh.New(), mesh.New()
	}

	var partsA, partsB []*mesh.Mesh
	if rb == mesh.RankEmpty {
		mt.log.Debug("match strategy", zap.String("strategy", "fade"), zap.Stringer("rank", ra))
		partsA = append(partsA, la[ra])
		partsB = append(partsB, fade(la[ra], b))
	} else {
		x, y := mt.matchRanks(la[ra], ra, lb[rb], rb)
		partsA = append(partsA, x)
		partsB = append(partsB, y)
	}
	la[ra] = nil
	if rb != mesh.RankEmpty {
		lb[rb] = nil
	}

	for r := mesh.RankSurface; r >= mesh.RankPoint; r-- {
		x, y := la[r], lb[r]
		hasX := x != nil && !x.Empty()
		hasY := y != nil && !y.Empty()
		switch {
		case hasX && hasY:
			x, y = mt.matchRanks(x, r, y, r)
		case hasX:
			y = fade(x, b)
		case hasY:
			x = fade(y, a)
		default:
			continue
		}
		partsA = append(partsA, x)
		partsB = append(partsB, y)
	}

	oa, ob := mesh.Merge(partsA...), mesh.Merge(partsB...)
	if swapped {
		return ob, oa
	}
	return oa, ob
}

// matchRanks dispatches on a pair of non-empty layers with ra >= rb.
func (mt *Matcher) matchRanks(a *mesh.Mesh, ra mesh.Rank, b *mesh.Mesh, rb mesh.Rank) (*mesh.Mesh, *mesh.Mesh) {
	mt.log.Debug("match strategy",
		zap.Stringer("rank_a", ra),
		zap.Stringer("rank_b", rb),
		zap.Int("surfaces_a", len(a.Surfaces)),
		zap.Int("surfaces_b", len(b.Surfaces)),
		zap.Int("curves_a", len(a.Curves)),
		zap.Int("curves_b", len(b.Curves)),
	)
	switch {
	case rb == mesh.RankPoint && ra != mesh.RankPoint:
		return mesh.Merge(a, fade(b, a)), mesh.Merge(fade(a, b), b)
	case ra == mesh.RankSurface && rb == mesh.RankSurface:
		return matchTriTri(a, b)
	case ra == mesh.RankSurface:
		fan, err := mesh.Uprank(b, false)
		if err != nil {
			// Unreachable for a curve layer; fall back to fading.
			return mesh.Merge(a, fade(b, a)), mesh.Merge(fade(a, b), b)
		}
		return matchTriTri(a, fan)
	case ra == mesh.RankCurve:
		return mt.matchLinLin(a, b)
	}
	return matchDotDot(a, b)
}

// check validates both outputs and their congruence.
func (mt *Matcher) check(a, b *mesh.Mesh) error {
	var err error
	if verr := mesh.Validate(a); verr != nil {
		err = fmt.Errorf("previous: %w", verr)
	} else if verr := mesh.Validate(b); verr != nil {
		err = fmt.Errorf("target: %w", verr)
	} else if !mesh.SameTopology(a, b) {
		err = errors.New("outputs are not congruent")
	}
	if err == nil {
		return nil
	}
	mt.log.Error("match produced an inconsistent mesh", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrInconsistent, err)
}
