package math

import "github.com/chewxy/math32"

// Lerp interpolates between a and b. The weighted form keeps both endpoints
// exact: t=0 returns a and t=1 returns b bit for bit.
func Lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// Clamp01 clamps t into [0, 1].
func Clamp01(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// ArcLerp moves p0 toward p1 along a circular arc that turns by angle radians
// about the +Z axis over the whole path. A zero angle degenerates to Lerp.
func ArcLerp(p0, p1 Vec3, angle, t float32) Vec3 {
	if t <= 0 {
		return p0
	}
	if t >= 1 {
		return p1
	}
	if math32.Abs(angle) < 1e-5 {
		return p0.Lerp(p1, t)
	}

	d := p1.Sub(p0)
	if d.X == 0 && d.Y == 0 {
		return p0.Lerp(p1, t)
	}

	// Center sits on the chord's perpendicular bisector, to the left of the
	// chord for a counter-clockwise turn.
	mid := p0.Lerp(p1, 0.5)
	left := Vec3{-d.Y, d.X, 0}
	h := 1 / (2 * math32.Tan(angle/2))
	center := mid.Add(left.Scale(h))
	center.Z = 0

	theta := angle * t
	s, c := math32.Sin(theta), math32.Cos(theta)
	rel := p0.Sub(center)
	rot := Vec3{rel.X*c - rel.Y*s, rel.X*s + rel.Y*c, 0}
	return Vec3{center.X + rot.X, center.Y + rot.Y, Lerp(p0.Z, p1.Z, t)}
}
