// Package threemf emits 3MF packages: the content-types part, the
// package relationships and the model XML, plus a zip writer that
// assembles them into a .3mf archive.
package threemf

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTitle is used when a model carries no title metadata.
const DefaultTitle = "STLMaps 3D Model"

// Mesh is one printable object: flat xyz vertices and triangle indices.
type Mesh struct {
	Name     string
	Vertices []float32
	Indices  []uint32
}

// Model is the full package payload.
type Model struct {
	Title       string
	Description string
	Meshes      []Mesh
}

// ContentTypesXML returns the [Content_Types].xml part. The output is
// identical on every call.
func ContentTypesXML() string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="model" ContentType="application/vnd.ms-package.3dmanufacturing-3dmodel+xml"/>
</Types>
`
}

// RelsXML returns the _rels/.rels part pointing at the model.
func RelsXML() string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Target="/3D/3dmodel.model" Id="rel0" Type="http://schemas.microsoft.com/3dmanufacturing/2013/01/3dmodel"/>
</Relationships>
`
}

// escapeXML escapes the five XML metacharacters in text content.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

func coord(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// ModelXML returns the 3D/3dmodel.model part: one object per mesh and a
// build listing every object.
func (m *Model) ModelXML() string {
	title := m.Title
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<model unit="millimeter" xml:lang="en-US" xmlns="http://schemas.microsoft.com/3dmanufacturing/core/2015/02">` + "\n")
	fmt.Fprintf(&b, "  <metadata name=\"Title\">%s</metadata>\n", escapeXML(title))
	if m.Description != "" {
		fmt.Fprintf(&b, "  <metadata name=\"Description\">%s</metadata>\n", escapeXML(m.Description))
	}
	b.WriteString("  <resources>\n")
	for i, mesh := range m.Meshes {
		id := i + 1
		fmt.Fprintf(&b, "    <object id=\"%d\" type=\"model\"", id)
		if mesh.Name != "" {
			fmt.Fprintf(&b, " name=\"%s\"", escapeXML(mesh.Name))
		}
		b.WriteString(">\n      <mesh>\n        <vertices>\n")
		for v := 0; v+2 < len(mesh.Vertices); v += 3 {
			fmt.Fprintf(&b, "          <vertex x=\"%s\" y=\"%s\" z=\"%s\"/>\n",
				coord(mesh.Vertices[v]), coord(mesh.Vertices[v+1]), coord(mesh.Vertices[v+2]))
		}
		b.WriteString("        </vertices>\n        <triangles>\n")
		for t := 0; t+2 < len(mesh.Indices); t += 3 {
			fmt.Fprintf(&b, "          <triangle v1=\"%d\" v2=\"%d\" v3=\"%d\"/>\n",
				mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2])
		}
		b.WriteString("        </triangles>\n      </mesh>\n    </object>\n")
	}
	b.WriteString("  </resources>\n  <build>\n")
	for i := range m.Meshes {
		fmt.Fprintf(&b, "    <item objectid=\"%d\"/>\n", i+1)
	}
	b.WriteString("  </build>\n</model>\n")
	return b.String()
}
