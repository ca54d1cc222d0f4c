package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/zettelgraph/internal/graphservice"
	"github.com/starford/zettelgraph/internal/index"
	"github.com/starford/zettelgraph/internal/source"
	"github.com/starford/zettelgraph/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// newLogger installs a JSON logger writing to w as the default logger.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// backend is the graph service with the resources it reads from.
type backend struct {
	svc   *graphservice.Service
	store *storage.FS
	db    *index.DB
}

func (b *backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// vaultExtensions returns the note extensions of the vault, ".md" when none
// are configured.
func vaultExtensions(cfg *Config) []string {
	if len(cfg.Vault.Extensions) == 0 {
		return []string{".md"}
	}
	return cfg.Vault.Extensions
}

// openVault opens the configured vault as a file source.
func openVault(cfg *Config, logger *slog.Logger) (*storage.FS, *source.FileSource, error) {
	store, err := storage.NewFS(cfg.Vault.Path, vaultExtensions(cfg)...)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	return store, source.NewFileSource(store, cfg.Vault.Recursive, logger), nil
}

// openBackend wires the ingestion source selected by cfg.Source.Kind into a
// graph service. The sqlite source opens the index read-only, unless sync is
// on: then the vault is upserted into the index before every build.
func openBackend(cfg *Config, logger *slog.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.Source.Kind {
	case SourceSQLite:
		if !cfg.Source.Sync {
			db, err := index.OpenReadOnly(cfg.SQLite.Driver, cfg.SQLite.Path)
			if err != nil {
				return nil, fmt.Errorf("init index: %w", err)
			}
			b.db = db
			b.svc = graphservice.New(db, logger)
			return b, nil
		}

		db, err := index.Open(cfg.SQLite.Driver, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		b.db = db

		store, files, err := openVault(cfg, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		b.store = store
		b.svc = graphservice.New(db, logger, graphservice.WithPrepare(func(ctx context.Context) error {
			return index.Refresh(ctx, db, files, logger)
		}))

	default:
		store, files, err := openVault(cfg, logger)
		if err != nil {
			return nil, err
		}
		b.store = store
		b.svc = graphservice.New(files, logger)
	}

	return b, nil
}
