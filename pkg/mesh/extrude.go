package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/morphic/pkg/math"
)

// Bend curls the XY plane of m into an arc of the given curvature: the X
// axis becomes a circle of radius 1/curvature centered above the origin.
// Meshes with surfaces are rejected.
func Bend(m *Mesh, curvature float32) (*Mesh, error) {
	if err := RequireNoSurfaces(m, "bend"); err != nil {
		return nil, err
	}
	out := m.Clone()
	if math32.Abs(curvature) < 1e-6 {
		return out, nil
	}
	r0 := 1 / curvature
	bend := func(p math.Vec3) math.Vec3 {
		theta := p.X * curvature
		r := r0 - p.Y
		return math.Vec3{X: r * math32.Sin(theta), Y: r0 - r*math32.Cos(theta), Z: p.Z}
	}
	for i := range out.Points {
		out.Points[i].Pos = bend(out.Points[i].Pos)
	}
	for i := range out.Curves {
		out.Curves[i].A.Pos = bend(out.Curves[i].A.Pos)
		out.Curves[i].B.Pos = bend(out.Curves[i].B.Pos)
	}
	out.Invalidate()
	return out, nil
}

// Revolve sweeps m about the Y axis through angle radians in the given
// number of steps. Curves sweep into surfaces and points sweep into curves.
// Meshes with surfaces are rejected.
func Revolve(m *Mesh, angle float32, steps int) (*Mesh, error) {
	if err := RequireNoSurfaces(m, "revolve"); err != nil {
		return nil, err
	}
	if steps < 1 {
		steps = 1
	}
	full := math32.Abs(math32.Abs(angle)-2*math32.Pi) < 1e-4
	rot := func(p math.Vec3, j int) math.Vec3 {
		if full && j == steps {
			j = 0
		}
		return math.RotateAxis(math.Vec3{Y: 1}, angle*float32(j)/float32(steps)).TransformVec3(p)
	}
	sweep := func(a, b Vertex, j int) [2][3]SurfaceVertex {
		a0, b0 := rot(a.Pos, j), rot(b.Pos, j)
		a1, b1 := rot(a.Pos, j+1), rot(b.Pos, j+1)
		return quad(
			SurfaceVertex{Pos: a0, Color: a.Color},
			SurfaceVertex{Pos: b0, Color: b.Color},
			SurfaceVertex{Pos: b1, Color: b.Color},
			SurfaceVertex{Pos: a1, Color: a.Color},
		)
	}
	return sweepMesh(m, steps, full, rot, sweep), nil
}

// Extrude pushes m along direction. Curves become walls of surfaces and
// points become segments. Meshes with surfaces are rejected.
func Extrude(m *Mesh, direction math.Vec3) (*Mesh, error) {
	if err := RequireNoSurfaces(m, "extrude"); err != nil {
		return nil, err
	}
	move := func(p math.Vec3, j int) math.Vec3 {
		return p.Add(direction.Scale(float32(j)))
	}
	sweep := func(a, b Vertex, _ int) [2][3]SurfaceVertex {
		return quad(
			SurfaceVertex{Pos: a.Pos, Color: a.Color},
			SurfaceVertex{Pos: b.Pos, Color: b.Color},
			SurfaceVertex{Pos: move(b.Pos, 1), Color: b.Color},
			SurfaceVertex{Pos: move(a.Pos, 1), Color: a.Color},
		)
	}
	return sweepMesh(m, 1, false, move, sweep), nil
}

func quad(a, b, c, d SurfaceVertex) [2][3]SurfaceVertex {
	n := b.Pos.Sub(a.Pos).Cross(d.Pos.Sub(a.Pos)).Normalize()
	if n == (math.Vec3{}) {
		n = c.Pos.Sub(b.Pos).Cross(a.Pos.Sub(b.Pos)).Normalize()
	}
	for _, v := range []*SurfaceVertex{&a, &b, &c, &d} {
		v.Normal = n
	}
	return [2][3]SurfaceVertex{{a, b, c}, {a, c, d}}
}

func sweepMesh(
	m *Mesh,
	steps int,
	closed bool,
	move func(math.Vec3, int) math.Vec3,
	sweep func(a, b Vertex, j int) [2][3]SurfaceVertex,
) *Mesh {
	var soup [][3]SurfaceVertex
	for _, c := range m.Curves {
		for j := range steps {
			q := sweep(c.A, c.B, j)
			soup = append(soup, q[0], q[1])
		}
	}
	out := New()
	if len(soup) > 0 {
		out = FromSurfaceVertices(soup, true)
	}
	b := &Builder{m: out}
	for _, p := range PointLayer(m).Points {
		pts := make([]math.Vec3, 0, steps+1)
		for j := 0; j <= steps; j++ {
			if closed && j == steps {
				break
			}
			pts = append(pts, move(p.Pos, j))
		}
		b.Polyline(pts, p.Color, closed)
	}
	out = b.Mesh()
	out.Uniforms = m.Uniforms
	out.Tags = append([]float64(nil), m.Tags...)
	return out
}
