package mesh

import (
	"github.com/cioddi/stlmaps-wasm-sub000/pkg/math"
)

func (b *Buffers) vertex(i uint32) math.Vec3 {
	return math.Vec3{
		X: b.Positions[3*i],
		Y: b.Positions[3*i+1],
		Z: b.Positions[3*i+2],
	}
}

// AccumulateNormals rebuilds per-vertex normals by summing the cross product
// of every incident triangle and normalizing. Vertices whose accumulated
// normal is degenerate receive the fallback vector.
func (b *Buffers) AccumulateNormals(fallback math.Vec3) {
	n := b.VertexCount()
	acc := make([]math.Vec3, n)
	for i := 0; i+2 < len(b.Indices); i += 3 {
		i0, i1, i2 := b.Indices[i], b.Indices[i+1], b.Indices[i+2]
		v0 := b.vertex(i0)
		e1 := b.vertex(i1).Sub(v0)
		e2 := b.vertex(i2).Sub(v0)
		face := e1.Cross(e2)
		acc[i0] = acc[i0].Add(face)
		acc[i1] = acc[i1].Add(face)
		acc[i2] = acc[i2].Add(face)
	}
	b.Normals = make([]float32, 3*n)
	for i, v := range acc {
		nv := v.Normalize()
		if nv.Length() == 0 {
			nv = fallback
		}
		b.Normals[3*i] = nv.X
		b.Normals[3*i+1] = nv.Y
		b.Normals[3*i+2] = nv.Z
	}
}
