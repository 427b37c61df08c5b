// Package zip bundles generated poster files into a single downloadable
// archive.
package zip

import (
	"archive/zip"
	"bytes"
	"path"
)

// Entry is one file destined for the archive.
type Entry struct {
	Name string
	Data []byte
}

// Archive writes the entries into an in-memory ZIP. Entries without data are
// skipped; names are flattened to their base name to keep the archive flat.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if len(entry.Data) == 0 {
			continue
		}
		w, err := zw.Create(path.Base(entry.Name))
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
