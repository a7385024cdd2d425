package converters

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/darianmavgo/tabconv/converters/common"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// TempStore writes generated artifacts into one directory. Every file gets
// a random suffix so uploads sharing a name never overwrite each other.
// Files are not removed; cleanup belongs to the environment.
type TempStore struct {
	dir string
}

// NewTempStore creates dir if needed. An empty dir means os.TempDir().
func NewTempStore(dir string) (*TempStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir %s: %w", dir, err)
	}
	return &TempStore{dir: dir}, nil
}

// Dir returns the directory artifacts are written to.
func (s *TempStore) Dir() string {
	return s.dir
}

// Save writes a as <base>-<uuid><ext> and returns the path.
func (s *TempStore) Save(a common.Artifact) (string, error) {
	ext := filepath.Ext(a.Name)
	base := strings.TrimSuffix(filepath.Base(a.Name), ext)
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext))

	if err := atomic.WriteFile(path, bytes.NewReader(a.Data)); err != nil {
		return "", common.Encoding("", fmt.Errorf("failed to save %s: %w", a.Name, err))
	}
	return path, nil
}
