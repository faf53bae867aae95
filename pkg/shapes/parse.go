package shapes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

// ErrUnknownShape is returned by Parse for an unrecognized shape name.
var ErrUnknownShape = errors.New("unknown shape")

// Parse builds a unit-sized mesh from a compact description such as
// "polygon:6", "outline:8", "star:5", "rect:2x1", "dots:4", "sphere" or
// "box:1x2x1". The part after the colon is optional.
func Parse(desc string) (*mesh.Mesh, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(desc), ":")
	switch strings.ToLower(name) {
	case "polygon", "poly", "ngon":
		n, err := intArg(arg, 4)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", desc, err)
		}
		return RegularPolygon(n, 1), nil
	case "outline", "loop":
		n, err := intArg(arg, 4)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", desc, err)
		}
		return Outline(n, 1), nil
	case "star":
		n, err := intArg(arg, 5)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", desc, err)
		}
		return Star(n, 1, 0.4), nil
	case "rect", "rectangle":
		dims, err := dimsArg(arg, 2, []float32{1, 1})
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", desc, err)
		}
		return Rectangle(dims[0], dims[1]), nil
	case "dots":
		n, err := intArg(arg, 3)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", desc, err)
		}
		return Dots(Ring(n, 1)), nil
	case "sphere":
		dims, err := dimsArg(arg, 1, []float32{1})
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", desc, err)
		}
		return Sphere(dims[0], DefaultCells)
	case "box":
		dims, err := dimsArg(arg, 3, []float32{1, 1, 1})
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", desc, err)
		}
		return Box(math.Vec3{X: dims[0], Y: dims[1], Z: dims[2]}, DefaultCells)
	}
	return nil, fmt.Errorf("parse %q: %w", desc, ErrUnknownShape)
}

func intArg(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("count %d must be positive", n)
	}
	return n, nil
}

func dimsArg(s string, n int, def []float32) ([]float32, error) {
	if s == "" {
		return def, nil
	}
	parts := strings.Split(s, "x")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d dimensions, got %d", n, len(parts))
	}
	dims := make([]float32, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("dimension %v must be positive", v)
		}
		dims[i] = float32(v)
	}
	return dims, nil
}
