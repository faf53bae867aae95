package mesh

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	stdmath "math"

	"github.com/Faultbox/morphic/pkg/math"
)

// Hash returns a content hash over every element, the uniforms and the tags.
// The value is cached until Invalidate is called.
func (m *Mesh) Hash() uint64 {
	if m.hashed {
		return m.hash
	}
	h := newHasher()
	h.putInt(len(m.Points))
	h.putInt(len(m.Curves))
	h.putInt(len(m.Surfaces))
	for _, p := range m.Points {
		h.vec3(p.Pos)
		h.vec4(p.Color)
		h.vec3(p.Normal)
		h.neighbor(p.Mirror)
		h.neighbor(p.Twin)
	}
	for _, c := range m.Curves {
		h.vec3(c.A.Pos)
		h.vec4(c.A.Color)
		h.vec3(c.B.Pos)
		h.vec4(c.B.Color)
		h.vec3(c.Normal)
		h.neighbor(c.Prev)
		h.neighbor(c.Next)
		h.neighbor(c.Mirror)
		h.neighbor(c.Twin)
	}
	for _, s := range m.Surfaces {
		for _, v := range s.V {
			h.vec3(v.Pos)
			h.vec3(v.Normal)
			h.f32(v.UV.X)
			h.f32(v.UV.Y)
			h.vec4(v.Color)
		}
		for _, e := range s.Edges {
			h.neighbor(e)
		}
		h.neighbor(s.Mirror)
		h.putBool(s.Front)
	}
	u := m.Uniforms
	h.f32(u.Opacity)
	h.f32(u.StrokeRadius)
	h.f32(u.DotRadius)
	h.putInt(u.ZClass)
	h.putBool(u.Smooth)
	h.f32(u.Gloss)
	for _, t := range m.Tags {
		h.u64(stdmath.Float64bits(t))
	}
	m.hash = h.Sum64()
	m.hashed = true
	return m.hash
}

// TopologyHash hashes only the adjacency structure, so two congruent meshes
// share it regardless of vertex data.
func (m *Mesh) TopologyHash() uint64 {
	h := newHasher()
	h.putInt(len(m.Points))
	h.putInt(len(m.Curves))
	h.putInt(len(m.Surfaces))
	for _, p := range m.Points {
		h.neighbor(p.Mirror)
		h.neighbor(p.Twin)
	}
	for _, c := range m.Curves {
		h.neighbor(c.Prev)
		h.neighbor(c.Next)
		h.neighbor(c.Mirror)
		h.neighbor(c.Twin)
	}
	for _, s := range m.Surfaces {
		for _, e := range s.Edges {
			h.neighbor(e)
		}
		h.neighbor(s.Mirror)
		h.putBool(s.Front)
	}
	return h.Sum64()
}

// SameTopology reports whether a and b have equal counts and element-wise
// identical adjacency.
func SameTopology(a, b *Mesh) bool {
	if len(a.Points) != len(b.Points) || len(a.Curves) != len(b.Curves) || len(a.Surfaces) != len(b.Surfaces) {
		return false
	}
	for i := range a.Points {
		pa, pb := a.Points[i], b.Points[i]
		if pa.Mirror != pb.Mirror || pa.Twin != pb.Twin {
			return false
		}
	}
	for i := range a.Curves {
		ca, cb := a.Curves[i], b.Curves[i]
		if ca.Prev != cb.Prev || ca.Next != cb.Next || ca.Mirror != cb.Mirror || ca.Twin != cb.Twin {
			return false
		}
	}
	for i := range a.Surfaces {
		sa, sb := a.Surfaces[i], b.Surfaces[i]
		if sa.Edges != sb.Edges || sa.Mirror != sb.Mirror || sa.Front != sb.Front {
			return false
		}
	}
	return true
}

type hasher struct {
	hash.Hash64
	buf [8]byte
}

func newHasher() *hasher {
	return &hasher{Hash64: fnv.New64a()}
}

func (h *hasher) u64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	h.Write(h.buf[:])
}

func (h *hasher) putInt(v int) { h.u64(uint64(v)) }

func (h *hasher) f32(v float32) { h.u64(uint64(stdmath.Float32bits(v))) }

func (h *hasher) putBool(v bool) {
	if v {
		h.u64(1)
	} else {
		h.u64(0)
	}
}

func (h *hasher) vec3(v math.Vec3) {
	h.f32(v.X)
	h.f32(v.Y)
	h.f32(v.Z)
}

func (h *hasher) vec4(v math.Vec4) {
	h.f32(v.X)
	h.f32(v.Y)
	h.f32(v.Z)
	h.f32(v.W)
}

func (h *hasher) neighbor(n Neighbor) {
	h.u64(uint64(n.Kind)<<56 ^ uint64(n.Index))
}
