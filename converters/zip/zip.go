// Package zip bundles generated artifacts into one archive.
package zip

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/darianmavgo/tabconv/converters/common"

	"github.com/klauspost/compress/zip"
)

// ContentType of a built archive.
const ContentType = "application/zip"

// Build writes every artifact as a deflated entry at the archive root, in
// the given order. Names that would leave the root are rejected.
func Build(artifacts []common.Artifact) ([]byte, error) {
	for _, a := range artifacts {
		if !rootEntry(a.Name) {
			return nil, common.Encoding("zip", fmt.Errorf("entry name %q is not a plain file name", a.Name))
		}
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	now := time.Now()
	for _, a := range artifacts {
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:     a.Name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			w.Close()
			return nil, common.Encoding("zip", fmt.Errorf("failed to create entry %s: %w", a.Name, err))
		}
		if _, err := fw.Write(a.Data); err != nil {
			w.Close()
			return nil, common.Encoding("zip", fmt.Errorf("failed to write entry %s: %w", a.Name, err))
		}
	}

	if err := w.Close(); err != nil {
		return nil, common.Encoding("zip", err)
	}
	return buf.Bytes(), nil
}

func rootEntry(name string) bool {
	return name != "." && filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// Artifact builds the archive and wraps it as a single artifact.
func Artifact(name string, artifacts []common.Artifact) (common.Artifact, error) {
	data, err := Build(artifacts)
	if err != nil {
		return common.Artifact{}, err
	}
	return common.Artifact{Name: name + ".zip", Data: data, ContentType: ContentType}, nil
}
