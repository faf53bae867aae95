package match

import (
	"github.com/dhconnelly/rtreego"

	"github.com/Faultbox/morphic/pkg/math"
)

const nearestTolerance = 1e-6

type site struct {
	pos  math.Vec3
	idx  int
	rect rtreego.Rect
}

func (s *site) Bounds() rtreego.Rect { return s.rect }

func point(p math.Vec3) rtreego.Point {
	return rtreego.Point{float64(p.X), float64(p.Y), float64(p.Z)}
}

// nearestIndex answers nearest-vertex queries over a fixed point set.
type nearestIndex struct {
	tree  *rtreego.Rtree
	sites []*site
}

func newNearestIndex(pts []math.Vec3) *nearestIndex {
	n := &nearestIndex{sites: make([]*site, 0, len(pts))}
	objs := make([]rtreego.Spatial, 0, len(pts))
	lengths := []float64{nearestTolerance, nearestTolerance, nearestTolerance}
	for i, p := range pts {
		r, err := rtreego.NewRect(point(p), lengths)
		if err != nil {
			continue
		}
		s := &site{pos: p, idx: i, rect: r}
		n.sites = append(n.sites, s)
		objs = append(objs, s)
	}
	n.tree = rtreego.NewTree(3, 8, 32, objs...)
	return n
}

// find returns the indexed point nearest to p. It reports false when the
// index is empty.
func (n *nearestIndex) find(p math.Vec3) (math.Vec3, int, bool) {
	if len(n.sites) == 0 {
		return math.Vec3{}, -1, false
	}
	hit := n.tree.NearestNeighbor(point(p))
	s, ok := hit.(*site)
	if !ok {
		return math.Vec3{}, -1, false
	}
	return s.pos, s.idx, true
}
