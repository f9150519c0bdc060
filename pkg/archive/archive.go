// Package archive bundles stored files into a single zip payload for
// download endpoints.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// File is one entry in a bundle.
type File struct {
	Name string
	Data []byte
}

// Bundle writes the given files into an in-memory zip archive. Entries with
// empty data are skipped so a missing file on disk never aborts the export.
func Bundle(files []File) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, f := range files {
		if len(f.Data) == 0 {
			continue
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("archive: create entry %q: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("archive: write entry %q: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: close: %w", err)
	}
	return buf.Bytes(), nil
}
