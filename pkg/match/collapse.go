package match

import (
	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

// collapse returns a transparent copy of m with every vertex pulled onto the
// nearest of targets, or onto fallback when targets is empty.
func collapse(m *mesh.Mesh, targets []math.Vec3, fallback math.Vec3) *mesh.Mesh {
	out := m.Clone()
	idx := newNearestIndex(targets)
	move := func(p math.Vec3) math.Vec3 {
		if q, _, ok := idx.find(p); ok {
			return q
		}
		return fallback
	}
	for i := range out.Points {
		p := &out.Points[i]
		p.Pos = move(p.Pos)
		p.Color = p.Color.WithAlpha(0)
	}
	for i := range out.Curves {
		c := &out.Curves[i]
		c.A.Pos = move(c.A.Pos)
		c.B.Pos = move(c.B.Pos)
		c.A.Color = c.A.Color.WithAlpha(0)
		c.B.Color = c.B.Color.WithAlpha(0)
	}
	for i := range out.Surfaces {
		for k := range 3 {
			v := &out.Surfaces[i].V[k]
			v.Pos = move(v.Pos)
			v.Color = v.Color.WithAlpha(0)
		}
	}
	out.Invalidate()
	return out
}

// fade returns the transparent counterpart of layer as seen from the other
// mesh: collapsed onto other's vertices, or onto its own centroid when other
// is empty.
func fade(layer, other *mesh.Mesh) *mesh.Mesh {
	var targets []math.Vec3
	if other != nil {
		targets = other.Vertices()
	}
	c, _ := layer.Centroid()
	return collapse(layer, targets, c)
}
