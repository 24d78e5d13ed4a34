// Package mesh holds renderable triangle-mesh buffers and the passes that
// operate on them: normal accumulation, concatenation and vertex welding.
package mesh

import (
	"fmt"
)

// Buffers is an indexed triangle mesh in attribute-per-array form.
// Positions and normals are xyz triples, colors rgb triples, uvs pairs.
// Colors and UVs are optional and either empty or sized to the vertex count.
type Buffers struct {
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	Colors    []float32 `json:"colors,omitempty"`
	UVs       []float32 `json:"uvs,omitempty"`
	Indices   []uint32  `json:"indices"`
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int { return len(b.Positions) / 3 }

// TriangleCount returns the number of index triples.
func (b *Buffers) TriangleCount() int { return len(b.Indices) / 3 }

// Validate checks the structural invariants: triple-aligned arrays,
// attribute arrays sized to the vertex count, and in-range indices.
func (b *Buffers) Validate() error {
	if len(b.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d not a multiple of 3", len(b.Positions))
	}
	if len(b.Indices)%3 != 0 {
		return fmt.Errorf("indices length %d not a multiple of 3", len(b.Indices))
	}
	n := b.VertexCount()
	if len(b.Normals) != 0 && len(b.Normals) != 3*n {
		return fmt.Errorf("normals length %d, want %d", len(b.Normals), 3*n)
	}
	if len(b.Colors) != 0 && len(b.Colors) != 3*n {
		return fmt.Errorf("colors length %d, want %d", len(b.Colors), 3*n)
	}
	if len(b.UVs) != 0 && len(b.UVs) != 2*n {
		return fmt.Errorf("uvs length %d, want %d", len(b.UVs), 2*n)
	}
	for i, idx := range b.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d at position %d out of range (vertices: %d)", idx, i, n)
		}
	}
	return nil
}

// SignedVolume sums the signed tetrahedron volumes of every triangle against
// the origin. Closed meshes with outward winding yield a positive total.
func (b *Buffers) SignedVolume() float64 {
	var vol float64
	for i := 0; i+2 < len(b.Indices); i += 3 {
		a := b.vertex(b.Indices[i])
		c := b.vertex(b.Indices[i+1])
		d := b.vertex(b.Indices[i+2])
		vol += float64(a.Dot(c.Cross(d))) / 6.0
	}
	return vol
}

// Merge concatenates meshes into one buffer, rewriting indices by the running
// vertex offset. Attribute arrays present on any input are padded with zeros
// for inputs that lack them, keeping per-vertex alignment.
func Merge(parts ...*Buffers) *Buffers {
	out := &Buffers{}
	hasColors, hasUVs := false, false
	for _, p := range parts {
		if len(p.Colors) > 0 {
			hasColors = true
		}
		if len(p.UVs) > 0 {
			hasUVs = true
		}
	}
	for _, p := range parts {
		offset := uint32(out.VertexCount())
		n := p.VertexCount()
		out.Positions = append(out.Positions, p.Positions...)
		if len(p.Normals) == 3*n {
			out.Normals = append(out.Normals, p.Normals...)
		} else {
			out.Normals = append(out.Normals, make([]float32, 3*n)...)
		}
		if hasColors {
			if len(p.Colors) == 3*n {
				out.Colors = append(out.Colors, p.Colors...)
			} else {
				out.Colors = append(out.Colors, make([]float32, 3*n)...)
			}
		}
		if hasUVs {
			if len(p.UVs) == 2*n {
				out.UVs = append(out.UVs, p.UVs...)
			} else {
				out.UVs = append(out.UVs, make([]float32, 2*n)...)
			}
		}
		for _, idx := range p.Indices {
			out.Indices = append(out.Indices, idx+offset)
		}
	}
	return out
}
