// Package shapes generates primitive meshes: filled polygons and stars,
// outlines, polylines, dot sets and solids tessellated from signed distance
// fields.
package shapes

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

// DefaultColor is used by the generators when no color is given.
var DefaultColor = math.RGBA(1, 1, 1, 1)

// Ring returns n points evenly spaced on a circle in the XY plane, starting
// at the top and running counter-clockwise.
func Ring(n int, radius float32) []math.Vec3 {
	pts := make([]math.Vec3, n)
	for i := range pts {
		a := math32.Pi/2 + 2*math32.Pi*float32(i)/float32(n)
		pts[i] = math.Vec3{X: radius * math32.Cos(a), Y: radius * math32.Sin(a)}
	}
	return pts
}

// Fan triangulates a closed outline from its centroid and strokes the rim.
func Fan(outline []math.Vec3, color math.Vec4) *mesh.Mesh {
	var center math.Vec3
	for _, p := range outline {
		center = center.Add(p)
	}
	center = center.Scale(1 / float32(len(outline)))
	tris := make([][3]math.Vec3, len(outline))
	for i := range outline {
		tris[i] = [3]math.Vec3{center, outline[i], outline[(i+1)%len(outline)]}
	}
	return mesh.FromTriangles(tris, color, true)
}

// RegularPolygon is a filled n-gon of the given circumradius.
func RegularPolygon(n int, radius float32) *mesh.Mesh {
	if n < 3 {
		n = 3
	}
	return Fan(Ring(n, radius), DefaultColor)
}

// Star is a filled star with the given number of tips.
func Star(tips int, outer, inner float32) *mesh.Mesh {
	if tips < 2 {
		tips = 2
	}
	out := Ring(tips, outer)
	in := Ring(tips, inner)
	step := math.QuatFromAxisAngle(math.Vec3{Z: 1}, math32.Pi/float32(tips))
	pts := make([]math.Vec3, 0, 2*tips)
	for i := range out {
		pts = append(pts, out[i], step.Rotate(in[i]))
	}
	return Fan(pts, DefaultColor)
}

// Rectangle is a filled w×h rectangle centered on the origin, split into
// two triangles.
func Rectangle(w, h float32) *mesh.Mesh {
	x, y := w/2, h/2
	a := math.Vec3{X: -x, Y: -y}
	b := math.Vec3{X: x, Y: -y}
	c := math.Vec3{X: x, Y: y}
	d := math.Vec3{X: -x, Y: y}
	return mesh.FromTriangles([][3]math.Vec3{{a, b, c}, {a, c, d}}, DefaultColor, true)
}

// Outline is the closed n-gon outline, with no fill.
func Outline(n int, radius float32) *mesh.Mesh {
	if n < 1 {
		n = 1
	}
	return Polyline(Ring(n, radius), true)
}

// Polyline is a curve through pts. An open polyline gets point caps at both
// ends.
func Polyline(pts []math.Vec3, closed bool) *mesh.Mesh {
	b := mesh.NewBuilder()
	idx := b.Polyline(pts, DefaultColor, closed)
	if !closed && len(idx) > 0 {
		b.CapStart(idx[0])
		b.CapEnd(idx[len(idx)-1])
	}
	return b.Mesh()
}

// Dots is a set of free points.
func Dots(pts []math.Vec3) *mesh.Mesh {
	b := mesh.NewBuilder()
	for _, p := range pts {
		b.AddPoint(mesh.Point{Pos: p, Color: DefaultColor, Normal: math.Vec3{Z: 1}})
	}
	return b.Mesh()
}
