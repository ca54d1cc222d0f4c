package index

import (
	"context"
	"log/slog"
	"strings"

	"github.com/starford/zettelgraph/internal/source"
)

// Sync brings the index up to date with src:
//   - every record with an identifier is upserted, unless its hash matches
//     the one stored for that id
//   - nodes that src no longer yields are deleted
//
// Records without an identifier or repeating an earlier one are skipped with
// a warning, the same rule the graph applies. When src yields no records at
// all nothing is deleted.
func Sync(ctx context.Context, db NoteIndex, src source.Source, logger *slog.Logger) error {
	return syncIndex(ctx, db, src, logger, true)
}

// Refresh upserts the records of src like Sync but never deletes nodes.
func Refresh(ctx context.Context, db NoteIndex, src source.Source, logger *slog.Logger) error {
	return syncIndex(ctx, db, src, logger, false)
}

func syncIndex(ctx context.Context, db NoteIndex, src source.Source, logger *slog.Logger, prune bool) error {
	records, err := src.Records(ctx)
	if err != nil {
		return err
	}

	existing, err := db.Hashes(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(records))
	var indexed, unchanged int
	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			logger.Warn("sync: note has no ID, skipping", slog.String("file", rec.File))
			continue
		}
		if _, dup := seen[id]; dup {
			logger.Warn("sync: duplicate ID, skipping", slog.String("id", id), slog.String("file", rec.File))
			continue
		}
		seen[id] = struct{}{}
		rec.ID = id

		if hash, ok := existing[id]; ok && hash == RecordHash(rec) {
			unchanged++
			continue
		}
		if err := db.UpsertNode(ctx, rec); err != nil {
			logger.Warn("sync: index failed", slog.String("file", rec.File), slog.String("error", err.Error()))
			continue
		}
		indexed++
		logger.Debug("sync: indexed", slog.String("id", id), slog.String("file", rec.File))
	}

	var removed int
	switch {
	case !prune:
	case len(seen) == 0 && len(existing) > 0:
		logger.Warn("sync: source yielded no notes, keeping indexed nodes", slog.Int("nodes", len(existing)))
	default:
		removed = pruneStale(ctx, db, existing, seen, logger)
	}

	logger.Info("sync: done",
		slog.Int("records", len(records)),
		slog.Int("indexed", indexed),
		slog.Int("unchanged", unchanged),
		slog.Int("removed", removed))
	return nil
}

// pruneStale deletes the indexed nodes missing from seen and returns how many
// were removed.
func pruneStale(ctx context.Context, db NoteIndex, existing map[string]string, seen map[string]struct{}, logger *slog.Logger) int {
	var removed int
	for id := range existing {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := db.DeleteNode(ctx, id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		removed++
		logger.Debug("sync: removed stale", slog.String("id", id))
	}
	return removed
}
