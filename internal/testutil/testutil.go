// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/zettelgraph/internal/index"
	"github.com/starford/zettelgraph/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T, driver string) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "zettelgraph-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(driver, dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory holding files (path -> content).
func TestVault(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	WriteFiles(t, vaultDir, files)
	store, err := storage.NewFS(vaultDir, ".md", ".org")
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteFiles writes files (path relative to root -> content), creating
// parent directories as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SampleVault is a small mixed-format vault:
//
//	alpha (project, go)  -> beta, delta
//	beta  (archive)
//	gamma (reading)      -> alpha
//	delta
//	epsilon (project)
//	noid.md has no identifier and is dropped.
var SampleVault = map[string]string{
	"alpha.md":   "---\nid: alpha\ntitle: Alpha\ntags: [project, go]\n---\nSee [[beta]] and [delta](delta.md).\n",
	"beta.org":   ":PROPERTIES:\n:ID: beta\n:END:\n#+title: Beta\n#+filetags: :archive:\n\nNothing here.\n",
	"gamma.org":  ":PROPERTIES:\n:ID: gamma\n:END:\n#+title: Gamma\n#+filetags: :reading:\n\nBack to [[id:alpha][Alpha]].\n",
	"delta.md":   "---\nid: delta\ntitle: Delta\n---\nA leaf.\n",
	"epsilon.md": "---\nid: epsilon\ntitle: Epsilon\ntags: [project]\n---\nAlone.\n",
	"noid.md":    "# No identifier\n\nMentions alpha.\n",
}
