package math

import (
	"math"
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("normalizing the zero vector should return zero")
	}
}

func TestLerpEndpointsExact(t *testing.T) {
	tests := []struct {
		a, b float32
	}{
		{0.1, 0.3},
		{-7.25, 1e6},
		{1.0 / 3.0, 2.0 / 3.0},
	}
	for _, tt := range tests {
		if got := Lerp(tt.a, tt.b, 0); got != tt.a {
			t.Errorf("Lerp(%v, %v, 0) = %v, want %v", tt.a, tt.b, got, tt.a)
		}
		if got := Lerp(tt.a, tt.b, 1); got != tt.b {
			t.Errorf("Lerp(%v, %v, 1) = %v, want %v", tt.a, tt.b, got, tt.b)
		}
	}
}

func TestVec4Lerp(t *testing.T) {
	a := RGBA(1, 0, 0, 1)
	b := RGBA(0, 0, 1, 0)
	got := a.Lerp(b, 0.5)
	want := Vec4{0.5, 0, 0.5, 0.5}
	if got != want {
		t.Errorf("Vec4.Lerp() = %v, want %v", got, want)
	}
}

func TestArcLerp(t *testing.T) {
	p0 := Vec3{0, 0, 0}
	p1 := Vec3{2, 0, 0}

	// A half turn follows the semicircle over the chord midpoint.
	mid := ArcLerp(p0, p1, math.Pi, 0.5)
	if !mid.ApproxEqual(Vec3{1, -1, 0}, 1e-4) && !mid.ApproxEqual(Vec3{1, 1, 0}, 1e-4) {
		t.Errorf("ArcLerp half turn midpoint = %v, want (1, ±1, 0)", mid)
	}
	if d := mid.Distance(Vec3{1, 0, 0}); math.Abs(float64(d-1)) > 1e-4 {
		t.Errorf("ArcLerp midpoint distance from center = %v, want 1", d)
	}

	if got := ArcLerp(p0, p1, 1, 0); got != p0 {
		t.Errorf("ArcLerp(t=0) = %v, want %v", got, p0)
	}
	if got := ArcLerp(p0, p1, 1, 1); got != p1 {
		t.Errorf("ArcLerp(t=1) = %v, want %v", got, p1)
	}
	if got := ArcLerp(p0, p1, 0, 0.25); !got.ApproxEqual(Vec3{0.5, 0, 0}, 1e-6) {
		t.Errorf("ArcLerp with zero angle = %v, want straight line", got)
	}
}

func TestArcLerpQuarterTurnEndsOnTarget(t *testing.T) {
	p0 := Vec3{0, 0, 0}
	p1 := Vec3{1, 0, 0}
	// Just below t=1 the point must be close to the target.
	got := ArcLerp(p0, p1, math.Pi/2, 0.999)
	if got.Distance(p1) > 0.01 {
		t.Errorf("ArcLerp near t=1 = %v, want close to %v", got, p1)
	}
}

func TestPlaneBasis(t *testing.T) {
	normals := []Vec3{{0, 0, 1}, {1, 0, 0}, {1, 1, 1}}
	for _, n := range normals {
		u, v := PlaneBasis(n)
		nn := n.Normalize()
		if abs(u.Dot(nn)) > 1e-5 || abs(v.Dot(nn)) > 1e-5 || abs(u.Dot(v)) > 1e-5 {
			t.Errorf("PlaneBasis(%v) = %v, %v: not orthogonal", n, u, v)
		}
		if abs(u.Length()-1) > 1e-5 || abs(v.Length()-1) > 1e-5 {
			t.Errorf("PlaneBasis(%v) = %v, %v: not unit length", n, u, v)
		}
	}
}

func TestNewellNormalAndCoplanar(t *testing.T) {
	square := []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	n := NewellNormal(square)
	if n != (Vec3{0, 0, 2}) {
		t.Errorf("NewellNormal(ccw square) = %v, want (0,0,2)", n)
	}
	if !Coplanar(square, n, 1e-5) {
		t.Error("square should be coplanar")
	}

	bent := append([]Vec3{}, square...)
	bent[2].Z = 0.5
	if Coplanar(bent, Vec3{0, 0, 1}, 1e-3) {
		t.Error("bent quad should not be coplanar")
	}
}
