// Package storage defines the note vault file-system abstraction.
package storage

import "github.com/starford/zettelgraph/internal/models"

// Provider is the read-only interface to a note vault.
type Provider interface {
	// List returns metadata for every note file under dir (relative to vault root),
	// descending into subdirectories only when recursive is set.
	List(dir string, recursive bool) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
}
