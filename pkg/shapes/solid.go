package shapes

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/Faultbox/morphic/pkg/math"
	"github.com/Faultbox/morphic/pkg/mesh"
)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 24

// FromSolid tessellates a signed distance field with marching cubes and
// welds the result into a surface mesh. Open edges, which only appear where
// the field is clipped, are stroked.
func FromSolid(s sdf.SDF3, cells int) *mesh.Mesh {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	soup := make([][3]mesh.SurfaceVertex, 0, len(triangles))
	for _, tri := range triangles {
		n := tri.Normal()
		normal := math.Vec3{X: float32(n.X), Y: float32(n.Y), Z: float32(n.Z)}
		var t [3]mesh.SurfaceVertex
		for j := range 3 {
			v := tri[j]
			t[j] = mesh.SurfaceVertex{
				Pos:    math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)},
				Normal: normal,
				Color:  DefaultColor,
			}
		}
		soup = append(soup, t)
	}
	return mesh.FromSurfaceVertices(soup, true)
}

// Sphere tessellates a sphere centered on the origin.
func Sphere(radius float32, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Sphere3D(float64(radius))
	if err != nil {
		return nil, fmt.Errorf("sphere: %w", err)
	}
	return FromSolid(s, cells), nil
}

// Box tessellates an axis-aligned box centered on the origin.
func Box(size math.Vec3, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: float64(size.X), Y: float64(size.Y), Z: float64(size.Z)}, 0)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	return FromSolid(s, cells), nil
}

// Cylinder tessellates a cylinder along Z centered on the origin.
func Cylinder(height, radius float32, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Cylinder3D(float64(height), float64(radius), 0)
	if err != nil {
		return nil, fmt.Errorf("cylinder: %w", err)
	}
	return FromSolid(s, cells), nil
}
