package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/Faultbox/morphic/pkg/match"
	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/shapes"
	"github.com/Faultbox/morphic/pkg/value"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites :keyword tokens to "__kw_keyword" string
// literals and ; comments to // comments. String literals are left alone.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch {
		case b[i] == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' {
					j++
				}
				j++
			}
			j = min(j+1, len(b))
			out = append(out, b[i:j]...)
			i = j
		case b[i] == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		default:
			out = append(out, b[i])
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpMesh carries a mesh between builtins. Builtins never modify the mesh
// they receive.
type sexpMesh struct {
	m *mesh.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	np, nc, ns := s.m.Counts()
	return fmt.Sprintf("(mesh %s :points %d :curves %d :surfaces %d)", s.m.Rank(), np, nc, ns)
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				res.kw[name] = args[i+1]
				i++
			} else {
				res.kw[name] = zygo.SexpNull
			}
			continue
		}
		res.positional = append(res.positional, args[i])
	}
	return res
}

// num returns positional argument i, or def when it is absent.
func (a kwArgs) num(i int, def float32) (float32, error) {
	if i >= len(a.positional) {
		return def, nil
	}
	return toFloat32(a.positional[i])
}

// kwNum returns keyword argument name, or def when it is absent.
func (a kwArgs) kwNum(name string, def float32) (float32, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	return toFloat32(v)
}

func (a kwArgs) kwBool(name string) bool {
	v, ok := a.kw[name]
	if !ok {
		return false
	}
	if b, ok := v.(*zygo.SexpBool); ok {
		return b.Val
	}
	return v == zygo.SexpNull
}

// meshArg returns positional argument i as a mesh.
func (a kwArgs) meshArg(i int) (*mesh.Mesh, error) {
	if i >= len(a.positional) {
		return nil, fmt.Errorf("missing mesh argument %d", i+1)
	}
	return toMesh(a.positional[i])
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toFloat32(s zygo.Sexp) (float32, error) {
	f, err := toFloat64(s)
	return float32(f), err
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toValue converts an interpreter result to a scene value. Null converts
// to nil.
func toValue(s zygo.Sexp) (value.Value, error) {
	switch v := s.(type) {
	case *sexpMesh:
		return value.NewMesh(v.m), nil
	case *zygo.SexpInt, *zygo.SexpFloat:
		f, _ := toFloat64(v)
		return value.Number(f), nil
	case *zygo.SexpPair, *zygo.SexpArray:
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, err
		}
		out := make(value.List, len(items))
		for i, item := range items {
			if out[i], err = toValue(item); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
		}
		return out, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("cannot use %T (%s) as a scene value", s, s.SexpString(nil))
}

// fromValue is the inverse of toValue. Maps and closures have no script
// form.
func fromValue(v value.Value) (zygo.Sexp, error) {
	switch x := v.(type) {
	case nil:
		return zygo.SexpNull, nil
	case value.Number:
		return &zygo.SexpFloat{Val: float64(x)}, nil
	case value.Mesh:
		return &sexpMesh{m: x.M}, nil
	case value.List:
		items := make([]zygo.Sexp, len(x))
		for i, e := range x {
			s, err := fromValue(e)
			if err != nil {
				return zygo.SexpNull, err
			}
			items[i] = s
		}
		return zygo.MakeList(items), nil
	}
	return zygo.SexpNull, fmt.Errorf("%s values have no script form", v.Kind())
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// meshOp adapts an operator on a private copy of its first argument.
func meshOp(op func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error)) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		m, err := a.meshArg(0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		out, err := op(m.Clone(), a)
		if err != nil {
			var rankErr *mesh.RankError
			if errors.As(err, &rankErr) {
				return zygo.SexpNull, err
			}
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpMesh{m: out}, nil
	}
}

// generator adapts a shape constructor taking only arguments.
func generator(gen func(a kwArgs) (*mesh.Mesh, error)) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := gen(parseArgs(args))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpMesh{m: m}, nil
	}
}

// registerBuiltins installs the shape DSL into env. Source must go through
// preprocessSource so that keywords are recognized.
func registerBuiltins(env *zygo.Zlisp, mt *match.Matcher) {

	// -----------------------------------------------------------------------
	// Generators
	// -----------------------------------------------------------------------

	// (polygon 6 :radius 2)
	env.AddFunction("polygon", generator(func(a kwArgs) (*mesh.Mesh, error) {
		n, err := a.num(0, 4)
		if err != nil {
			return nil, err
		}
		r, err := a.kwNum("radius", 1)
		if err != nil {
			return nil, fmt.Errorf("radius: %w", err)
		}
		return shapes.RegularPolygon(int(n), r), nil
	}))

	// (outline 8 :radius 1)
	env.AddFunction("outline", generator(func(a kwArgs) (*mesh.Mesh, error) {
		n, err := a.num(0, 4)
		if err != nil {
			return nil, err
		}
		r, err := a.kwNum("radius", 1)
		if err != nil {
			return nil, fmt.Errorf("radius: %w", err)
		}
		return shapes.Outline(int(n), r), nil
	}))

	// (rect 2 1)
	env.AddFunction("rect", generator(func(a kwArgs) (*mesh.Mesh, error) {
		w, err := a.num(0, 1)
		if err != nil {
			return nil, err
		}
		h, err := a.num(1, w)
		if err != nil {
			return nil, err
		}
		return shapes.Rectangle(w, h), nil
	}))

	// (star 5 :outer 1 :inner 0.4)
	env.AddFunction("star", generator(func(a kwArgs) (*mesh.Mesh, error) {
		n, err := a.num(0, 5)
		if err != nil {
			return nil, err
		}
		outer, err := a.kwNum("outer", 1)
		if err != nil {
			return nil, fmt.Errorf("outer: %w", err)
		}
		inner, err := a.kwNum("inner", 0.4*outer)
		if err != nil {
			return nil, fmt.Errorf("inner: %w", err)
		}
		return shapes.Star(int(n), outer, inner), nil
	}))

	// (dots 6 :radius 1) places n free points on a ring.
	env.AddFunction("dots", generator(func(a kwArgs) (*mesh.Mesh, error) {
		n, err := a.num(0, 4)
		if err != nil {
			return nil, err
		}
		r, err := a.kwNum("radius", 1)
		if err != nil {
			return nil, fmt.Errorf("radius: %w", err)
		}
		return shapes.Dots(shapes.Ring(int(n), r)), nil
	}))

	// (path x0 y0 x1 y1 ... :closed true)
	env.AddFunction("path", generator(func(a kwArgs) (*mesh.Mesh, error) {
		if len(a.positional)%2 != 0 || len(a.positional) < 4 {
			return nil, fmt.Errorf("expected at least two x y pairs, got %d numbers", len(a.positional))
		}
		pts := make([]math.Vec3, 0, len(a.positional)/2)
		for i := 0; i < len(a.positional); i += 2 {
			x, err := toFloat32(a.positional[i])
			if err != nil {
				return nil, err
			}
			y, err := toFloat32(a.positional[i+1])
			if err != nil {
				return nil, err
			}
			pts = append(pts, math.Vec3{X: x, Y: y})
		}
		return shapes.Polyline(pts, a.kwBool("closed")), nil
	}))

	// (shape "polygon:6")
	env.AddFunction("shape", generator(func(a kwArgs) (*mesh.Mesh, error) {
		if len(a.positional) != 1 {
			return nil, fmt.Errorf("expected a shape description")
		}
		desc, err := toString(a.positional[0])
		if err != nil {
			return nil, err
		}
		return shapes.Parse(desc)
	}))

	// -----------------------------------------------------------------------
	// Transforms
	// -----------------------------------------------------------------------

	// (shift m dx dy [dz])
	env.AddFunction("shift", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		d, err := vec3Args(a, 1, 0)
		if err != nil {
			return nil, err
		}
		m.Shift(d)
		return m, nil
	}))

	// (scale m s) or (scale m sx sy [sz])
	env.AddFunction("scale", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		s, err := a.num(1, 1)
		if err != nil {
			return nil, err
		}
		v := math.Vec3{X: s, Y: s, Z: s}
		if len(a.positional) > 2 {
			if v, err = vec3Args(a, 1, 1); err != nil {
				return nil, err
			}
		}
		m.Scale(v)
		return m, nil
	}))

	// (rotate m angle) turns about +Z through the centroid.
	env.AddFunction("rotate", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		angle, err := a.num(1, 0)
		if err != nil {
			return nil, err
		}
		m.Rotate(math.Vec3{Z: 1}, angle)
		return m, nil
	}))

	// (recolor m r g b [a])
	env.AddFunction("recolor", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		var c [4]float32
		for i := range c {
			v, err := a.num(i+1, 1)
			if err != nil {
				return nil, err
			}
			c[i] = v
		}
		m.Recolor(math.RGBA(c[0], c[1], c[2], c[3]))
		return m, nil
	}))

	// (opacity m 0.5)
	env.AddFunction("opacity", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		o, err := a.num(1, 1)
		if err != nil {
			return nil, err
		}
		m.SetOpacity(o)
		return m, nil
	}))

	// (tag m 1 2) replaces the tag path used for tree matching.
	env.AddFunction("tag", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		tags := make([]float64, 0, len(a.positional)-1)
		for _, s := range a.positional[1:] {
			f, err := toFloat64(s)
			if err != nil {
				return nil, err
			}
			tags = append(tags, f)
		}
		m.Tags = tags
		m.Invalidate()
		return m, nil
	}))

	env.AddFunction("subdivide", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		m.Subdivide()
		return m, nil
	}))

	// -----------------------------------------------------------------------
	// Rank operators
	// -----------------------------------------------------------------------

	// (uprank m :force true)
	env.AddFunction("uprank", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		return mesh.Uprank(m, a.kwBool("force"))
	}))

	env.AddFunction("downrank", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		return mesh.Downrank(m)
	}))

	// (bend m curvature)
	env.AddFunction("bend", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		k, err := a.num(1, 0)
		if err != nil {
			return nil, err
		}
		return mesh.Bend(m, k)
	}))

	// (revolve m angle :steps 16) sweeps about +Y; the angle defaults to a
	// full turn.
	env.AddFunction("revolve", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		angle, err := a.num(1, 2*math32.Pi)
		if err != nil {
			return nil, err
		}
		steps, err := a.kwNum("steps", 16)
		if err != nil {
			return nil, fmt.Errorf("steps: %w", err)
		}
		return mesh.Revolve(m, angle, int(steps))
	}))

	// (extrude m dx dy [dz])
	env.AddFunction("extrude", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		d, err := vec3Args(a, 1, 0)
		if err != nil {
			return nil, err
		}
		return mesh.Extrude(m, d)
	}))

	// -----------------------------------------------------------------------
	// Layers
	// -----------------------------------------------------------------------

	env.AddFunction("surfaces", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		return mesh.SurfaceLayer(m), nil
	}))
	env.AddFunction("curves", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		return mesh.CurveLayer(m), nil
	}))
	env.AddFunction("points", meshOp(func(m *mesh.Mesh, a kwArgs) (*mesh.Mesh, error) {
		return mesh.PointLayer(m), nil
	}))

	// (merge a b ...)
	env.AddFunction("merge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		parts := make([]*mesh.Mesh, len(args))
		for i, s := range args {
			m, err := toMesh(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("merge: argument %d: %w", i+1, err)
			}
			parts[i] = m
		}
		return &sexpMesh{m: mesh.Merge(parts...)}, nil
	})

	// -----------------------------------------------------------------------
	// Morphing
	// -----------------------------------------------------------------------

	// (morph before after t :arc 0) blends two scene values. Meshes are
	// matched first; lists are matched element-wise or by tag.
	env.AddFunction("morph", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if len(a.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("morph requires before, after and t")
		}
		before, err := toValue(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("morph: before: %w", err)
		}
		after, err := toValue(a.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("morph: after: %w", err)
		}
		t, err := toFloat32(a.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("morph: t: %w", err)
		}
		arc, err := a.kwNum("arc", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("morph: arc: %w", err)
		}

		prev, cur, target, err := mt.Prepare(before, after)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("morph: %w", err)
		}
		v, err := value.Interpolate(prev, cur, target, t, arc)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("morph: %w", err)
		}
		return fromValue(v)
	})
}

// vec3Args reads up to three numbers starting at positional index from.
// Missing components take def.
func vec3Args(a kwArgs, from int, def float32) (math.Vec3, error) {
	x, err := a.num(from, def)
	if err != nil {
		return math.Vec3{}, err
	}
	y, err := a.num(from+1, def)
	if err != nil {
		return math.Vec3{}, err
	}
	z, err := a.num(from+2, def)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: x, Y: y, Z: z}, nil
}
