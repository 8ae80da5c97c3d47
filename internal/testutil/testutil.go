// Package testutil provides shared test helpers for setting up content trees.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/gigs/internal/storage"
)

// ContentDir creates a temporary content root with a storage.Provider.
func ContentDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// WriteFile writes content to rel under root, creating parent directories.
// It returns the absolute path written.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// Gig returns an .mdx document whose frontmatter has the given title and,
// when start is non-empty, a date.start value.
func Gig(title, start string) string {
	s := "---\ntitle: " + title + "\n"
	if start != "" {
		s += "date:\n  start: \"" + start + "\"\n"
	}
	return s + "---\n\n# " + title + "\n"
}
