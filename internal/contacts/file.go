package contacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPath is the store document written next to the contact export.
const DefaultPath = "Emails.json"

// File persists a Store as one JSON document.
type File struct {
	Path string
}

// Load reads the document. A missing file yields an empty store.
func (f File) Load() (*Store, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", f.Path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return NewStore(), nil
	}

	s := NewStore()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", f.Path, err)
	}
	return s, nil
}

// Save writes the whole store atomically: a temp file in the same directory is
// written, synced and renamed over the document.
func (f File) Save(s *Store) error {
	compact, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "    "); err != nil {
		return fmt.Errorf("indent store: %w", err)
	}
	out.WriteByte('\n')

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(out.Bytes()); err != nil {
		cleanup()
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}
