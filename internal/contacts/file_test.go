package contacts_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shpitdev/connections-enricher/internal/contacts"
)

func TestFile_LoadMissingIsEmpty(t *testing.T) {
	f := contacts.File{Path: filepath.Join(t.TempDir(), "Emails.json")}
	s, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", s.Len())
	}
}

func TestFile_SaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	f := contacts.File{Path: filepath.Join(dir, "Emails.json")}

	s := contacts.NewStore()
	mergeAll(t, s, exportRows())
	if err := f.Save(s); err != nil {
		t.Fatalf("save: %v", err)
	}

	bob, _ := s.Get("Bob Jones")
	bob.Email = "bob@example.com"
	if err := f.Save(s); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(snapshot(t, s), snapshot(t, loaded)); diff != "" {
		t.Fatalf("reloaded store differs (-saved +loaded):\n%s", diff)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("temp files left behind: %v", names)
	}
}

func TestFile_SaveIsIndented(t *testing.T) {
	f := contacts.File{Path: filepath.Join(t.TempDir(), "Emails.json")}
	s := contacts.NewStore()
	s.Put(contacts.Record{Name: "Alice Smith", First: "Alice"})
	if err := f.Save(s); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "\n    \"Alice Smith\": {\n        \"name\": \"Alice Smith\"") {
		t.Fatalf("unexpected layout:\n%s", b)
	}
}

func TestFile_LoadRejectsCorruptDocument(t *testing.T) {
	f := contacts.File{Path: filepath.Join(t.TempDir(), "Emails.json")}
	if err := os.WriteFile(f.Path, []byte(`{"Alice": `), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := f.Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
