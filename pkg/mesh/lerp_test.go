package mesh

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/math"
)

func TestLerpEndpoints(t *testing.T) {
	a := fan(6, 1)
	b := fan(6, 2)
	b.Recolor(math.RGBA(0, 1, 0, 1))
	b.Uniforms.ZClass = 3

	dst := a.Clone()
	for _, tt := range []struct {
		t    float32
		want *Mesh
	}{
		{0, a},
		{1, b},
		{-0.5, a},
		{1.5, b},
	} {
		if err := Lerp(dst, a, b, tt.t, 0); err != nil {
			t.Fatalf("Lerp(t=%v) error = %v", tt.t, err)
		}
		diff(t, tt.want, dst)
	}
}

func TestLerpMidpoint(t *testing.T) {
	a := loop(4, 1)
	b := loop(4, 3)
	dst := New()
	if err := Lerp(dst, a, b, 0.5, 0); err != nil {
		t.Fatalf("Lerp() error = %v", err)
	}
	mustValidate(t, dst)
	if got := dst.Curves[0].A.Pos; !got.ApproxEqual(math.Vec3{X: 2}, 1e-5) {
		t.Errorf("midpoint vertex = %v, want (2,0,0)", got)
	}
}

func TestLerpArc(t *testing.T) {
	a := &Mesh{Points: []Point{{Pos: math.Vec3{}}}}
	b := &Mesh{Points: []Point{{Pos: math.Vec3{X: 2}}}}
	dst := a.Clone()
	if err := Lerp(dst, a, b, 0.5, math32.Pi); err != nil {
		t.Fatalf("Lerp() error = %v", err)
	}
	if got := dst.Points[0].Pos; got.Y > -0.9 && got.Y < 0.9 {
		t.Errorf("arc midpoint = %v, want it off the chord", got)
	}
}

func TestLerpIncongruent(t *testing.T) {
	err := Lerp(New(), loop(3, 1), loop(4, 1), 0.5, 0)
	if !errors.Is(err, ErrIncongruent) {
		t.Errorf("Lerp() error = %v, want ErrIncongruent", err)
	}
}

func TestLerpUniformsDiscreteSwitch(t *testing.T) {
	a := Uniforms{Opacity: 0, ZClass: 1}
	b := Uniforms{Opacity: 1, ZClass: 2, Smooth: true}
	if u := LerpUniforms(a, b, 0.25); u.ZClass != 1 || u.Smooth || u.Opacity != 0.25 {
		t.Errorf("LerpUniforms(0.25) = %+v", u)
	}
	if u := LerpUniforms(a, b, 0.5); u.ZClass != 2 || !u.Smooth {
		t.Errorf("LerpUniforms(0.5) = %+v, want target discrete values", u)
	}
}
