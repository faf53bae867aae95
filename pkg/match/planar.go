package match

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

const colorEpsilon = 1e-4

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

// planarEligible reports whether m is made only of curves, lies in a plane
// and carries a single color.
func (mt *Matcher) planarEligible(m *mesh.Mesh) bool {
	if len(m.Curves) == 0 || len(m.Surfaces) > 0 || len(m.Points) > 0 {
		return false
	}
	pts := m.Vertices()
	normal := math.NewellNormal(mesh.ChainPoints(m, mesh.Chains(m)[0]))
	if normal.LengthSq() == 0 {
		normal = math.Vec3{Z: 1}
	}
	if !math.Coplanar(pts, normal, mt.opts.FlatEpsilon) {
		return false
	}
	ref := m.Curves[0].A.Color
	same := func(c math.Vec4) bool {
		d := c.Add(ref.Scale(-1))
		return d.X*d.X+d.Y*d.Y+d.Z*d.Z+d.W*d.W <= colorEpsilon*colorEpsilon
	}
	for _, c := range m.Curves {
		if !same(c.A.Color) || !same(c.B.Color) {
			return false
		}
	}
	return true
}

// sortLoops orders loops by centroid, left to right then bottom to top.
func sortLoops(loops []polyline) {
	slices.SortStableFunc(loops, func(x, y polyline) int {
		cx, cy := x.centroid(), y.centroid()
		if c := cmp.Compare(cx.X, cy.X); c != 0 {
			return c
		}
		return cmp.Compare(cx.Y, cy.Y)
	})
}

// matchPlanar handles flat single-colored outlines: both meshes are split
// into closed loops, loops are paired over the least common multiple of the
// loop counts and each pair is resampled loop to loop. It reports false
// when the shapes do not qualify.
func (mt *Matcher) matchPlanar(a, b *mesh.Mesh) (*mesh.Mesh, *mesh.Mesh, bool) {
	if !mt.planarEligible(a) || !mt.planarEligible(b) {
		return nil, nil, false
	}
	la, okA := mesh.LoopSeparate(a)
	lb, okB := mesh.LoopSeparate(b)
	if !okA || !okB {
		return nil, nil, false
	}
	p, q := len(la), len(lb)
	pairs := lcm(p, q)
	if pairs > mt.opts.PlanarMaxPairs {
		mt.log.Debug("planar match skipped",
			zap.Int("loops_a", p),
			zap.Int("loops_b", q),
			zap.Int("pairs", pairs),
		)
		return nil, nil, false
	}

	loopsA := make([]polyline, p)
	for i, l := range la {
		loopsA[i] = polylines(l)[0]
	}
	loopsB := make([]polyline, q)
	for i, l := range lb {
		loopsB[i] = polylines(l)[0]
	}
	sortLoops(loopsA)
	sortLoops(loopsB)

	mt.log.Debug("match strategy",
		zap.String("strategy", "planar"),
		zap.Int("loops_a", p),
		zap.Int("loops_b", q),
		zap.Int("pairs", pairs),
	)
	ba, bb := mesh.NewBuilder(), mesh.NewBuilder()
	for k := range pairs {
		x, y := matchLoopPair(loopsA[k*p/pairs], loopsB[k*q/pairs], mt.opts.LinBias)
		emit(ba, x)
		emit(bb, y)
	}
	return ba.Mesh(), bb.Mesh(), true
}
