package threemf

import (
	"archive/zip"
	"fmt"
	"io"
)

// WritePackage assembles the three parts into a .3mf zip archive on w.
func WritePackage(w io.Writer, m *Model) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", ContentTypesXML()},
		{"_rels/.rels", RelsXML()},
		{"3D/3dmodel.model", m.ModelXML()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("threemf: create %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			return fmt.Errorf("threemf: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("threemf: close package: %w", err)
	}
	return nil
}
