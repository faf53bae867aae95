package math

import "github.com/chewxy/math32"

// NewellNormal returns the unnormalized Newell normal of a polygon. For a
// planar loop its length is twice the enclosed area.
func NewellNormal(loop []Vec3) Vec3 {
	var n Vec3
	for i := range loop {
		cur := loop[i]
		next := loop[(i+1)%len(loop)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// PlaneBasis returns two unit vectors spanning the plane orthogonal to normal.
func PlaneBasis(normal Vec3) (u, v Vec3) {
	n := normal.Normalize()
	if n == (Vec3{}) {
		return Vec3{1, 0, 0}, Vec3{0, 1, 0}
	}
	helper := Vec3{1, 0, 0}
	if math32.Abs(n.X) > 0.9 {
		helper = Vec3{0, 1, 0}
	}
	u = helper.Sub(n.Scale(helper.Dot(n))).Normalize()
	v = n.Cross(u)
	return u, v
}

// Coplanar reports whether every point lies within eps of the plane through
// the first point with the given normal.
func Coplanar(points []Vec3, normal Vec3, eps float32) bool {
	if len(points) == 0 {
		return true
	}
	n := normal.Normalize()
	if n == (Vec3{}) {
		// Collinear or degenerate input is flat by definition.
		return true
	}
	origin := points[0]
	for _, p := range points[1:] {
		if math32.Abs(p.Sub(origin).Dot(n)) > eps {
			return false
		}
	}
	return true
}
