package match

import "github.com/Faultbox/morphic/pkg/mesh"

// matchDotDot pairs two point layers by duplicating points of the smaller
// set in balanced runs.
func matchDotDot(a, b *mesh.Mesh) (*mesh.Mesh, *mesh.Mesh) {
	na, nb := len(a.Points), len(b.Points)
	n := max(na, nb)
	oa := &mesh.Mesh{Uniforms: a.Uniforms, Points: make([]mesh.Point, n)}
	ob := &mesh.Mesh{Uniforms: b.Uniforms, Points: make([]mesh.Point, n)}
	ia := Assign(n, na)
	ib := Assign(n, nb)
	for x := range n {
		pa, pb := a.Points[ia[x]], b.Points[ib[x]]
		pa.Mirror, pa.Twin = mesh.None, mesh.None
		pb.Mirror, pb.Twin = mesh.None, mesh.None
		oa.Points[x] = pa
		ob.Points[x] = pb
	}
	return oa, ob
}
