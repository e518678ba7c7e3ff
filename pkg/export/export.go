// Package export writes compiled documents to disk as .gltf or .glb files.
package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	qgltf "github.com/qmuntal/gltf"

	"github.com/packerman/pcg/pkg/compile"
	"github.com/packerman/pcg/pkg/gltf"
)

// Convert maps doc onto the qmuntal/gltf document model. Buffer bytes are
// decoded from their data URIs so the result can be written in either form.
func Convert(doc *gltf.Document) (*qgltf.Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	out := new(qgltf.Document)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	for i, b := range doc.Buffers {
		raw, err := compile.DecodeDataURI(b.URI)
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
		out.Buffers[i].Data = raw
	}
	return out, nil
}

// Save writes doc to path. A .glb extension selects the binary container,
// with the first buffer moved into the BIN chunk; anything else is written
// as JSON with inlined buffers.
func Save(doc *gltf.Document, path string) error {
	out, err := Convert(doc)
	if err != nil {
		return err
	}

	if IsBinary(path) {
		if len(out.Buffers) > 0 {
			out.Buffers[0].URI = ""
		}
		err = qgltf.SaveBinary(out, path)
	} else {
		err = qgltf.Save(out, path)
	}
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// IsBinary reports whether path names a .glb file.
func IsBinary(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".glb")
}
