// Package source produces note records from a vault directory. The
// relational adapter lives in the index package and satisfies the same
// Source interface.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/zettelgraph/internal/apperr"
	"github.com/starford/zettelgraph/internal/models"
	"github.com/starford/zettelgraph/internal/parser"
	"github.com/starford/zettelgraph/internal/storage"
)

// Source yields note records in a stable order.
type Source interface {
	Records(ctx context.Context) ([]models.Record, error)
}

// FileSource reads note files from a vault through a storage.Provider and
// parses them one by one.
type FileSource struct {
	Store     storage.Provider
	Recursive bool
	Logger    *slog.Logger
}

// NewFileSource creates a FileSource over store.
func NewFileSource(store storage.Provider, recursive bool, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{Store: store, Recursive: recursive, Logger: logger}
}

// Records lists the vault, parses every note file, and resolves links.
// A file that cannot be read or parsed is logged and skipped; only a
// failure to list the vault is returned.
func (s *FileSource) Records(ctx context.Context) ([]models.Record, error) {
	metas, err := s.Store.List("", s.Recursive)
	if err != nil {
		return nil, fmt.Errorf("source: %w: %w", apperr.ErrDataSource, err)
	}

	records := make([]models.Record, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.readRecord(m.Path)
		if err != nil {
			s.Logger.Warn("source: skipping note",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, rec)
	}

	return ResolveLinks(records), nil
}

func (s *FileSource) readRecord(path string) (models.Record, error) {
	data, err := s.Store.Read(path)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", apperr.ErrDataSource, err)
	}
	res, err := parser.Parse(path, data)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", apperr.ErrDataSource, err)
	}
	return models.Record{
		ID:    res.ID,
		File:  path,
		Title: res.Title,
		Tags:  res.Tags,
		Links: res.Links,
		Body:  res.Body,
	}, nil
}

// ResolveLinks adds to each record's links the id of every other record
// that appears verbatim in its body. Explicit links found by the parser are
// kept. Records without a body are returned unchanged.
//
// The scan is O(N²) substring searches, fine for a personal note collection.
func ResolveLinks(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, rec := range records {
		out[i] = rec
		if rec.Body == "" {
			continue
		}
		seen := make(map[string]struct{}, len(rec.Links))
		links := make([]string, 0, len(rec.Links))
		for _, l := range rec.Links {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			links = append(links, l)
		}
		for j, other := range records {
			id := strings.TrimSpace(other.ID)
			if i == j || id == "" || id == rec.ID {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			if strings.Contains(rec.Body, id) {
				seen[id] = struct{}{}
				links = append(links, id)
			}
		}
		out[i].Links = links
	}
	return out
}
