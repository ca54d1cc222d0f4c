package index

import (
	"context"

	"github.com/starford/zettelgraph/internal/models"
	"github.com/starford/zettelgraph/internal/source"
)

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	source.Source
	UpsertNode(ctx context.Context, rec models.Record) error
	DeleteNode(ctx context.Context, id string) error
	Hashes(ctx context.Context) (map[string]string, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
