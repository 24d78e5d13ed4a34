package mesh

// Weld maps every vertex onto the first earlier vertex within tolerance
// (L2 distance) and rewrites the mesh with the surviving vertices. Normals
// are re-accumulated afterwards; colors and uvs keep the survivor's values.
// With no welds the mesh is returned structurally unchanged.
func Weld(b *Buffers, tolerance float32) *Buffers {
	n := b.VertexCount()
	tol2 := tolerance * tolerance

	remap := make([]uint32, n)
	kept := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		vi := b.vertex(uint32(i))
		match := -1
		for _, k := range kept {
			d := vi.Sub(b.vertex(k))
			if d.Dot(d) <= tol2 {
				match = int(k)
				break
			}
		}
		if match >= 0 {
			remap[i] = remap[match]
		} else {
			remap[i] = uint32(len(kept))
			kept = append(kept, uint32(i))
		}
	}

	out := &Buffers{
		Positions: make([]float32, 0, 3*len(kept)),
		Indices:   make([]uint32, 0, len(b.Indices)),
	}
	hasColors := len(b.Colors) == 3*n
	hasUVs := len(b.UVs) == 2*n
	for _, k := range kept {
		out.Positions = append(out.Positions, b.Positions[3*k], b.Positions[3*k+1], b.Positions[3*k+2])
		if hasColors {
			out.Colors = append(out.Colors, b.Colors[3*k], b.Colors[3*k+1], b.Colors[3*k+2])
		}
		if hasUVs {
			out.UVs = append(out.UVs, b.UVs[2*k], b.UVs[2*k+1])
		}
	}
	for i := 0; i+2 < len(b.Indices); i += 3 {
		a := remap[b.Indices[i]]
		c := remap[b.Indices[i+1]]
		d := remap[b.Indices[i+2]]
		// Collapsed triangles are dropped.
		if a == c || c == d || a == d {
			continue
		}
		out.Indices = append(out.Indices, a, c, d)
	}
	out.AccumulateNormals(upNormal)
	return out
}
