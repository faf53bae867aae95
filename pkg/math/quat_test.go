package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	got := q.Rotate(Vec3{1, 0, 0})
	if !got.ApproxEqual(Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("Rotate((1,0,0)) by 90° about Z = %v, want (0,1,0)", got)
	}
}

func TestQuatToMat4MatchesRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{1, 1, 0}, 0.7)
	p := Vec3{0.3, -2, 5}
	viaQuat := q.Rotate(p)
	viaMat := q.ToMat4().TransformVec3(p)
	if !viaQuat.ApproxEqual(viaMat, 1e-4) {
		t.Errorf("ToMat4 transform = %v, quaternion rotate = %v", viaMat, viaQuat)
	}
}
