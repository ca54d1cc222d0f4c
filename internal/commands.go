package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/zettelgraph/internal/export"
	"github.com/starford/zettelgraph/internal/graphservice"
	"github.com/starford/zettelgraph/internal/index"
	"github.com/starford/zettelgraph/internal/mcpserver"
)

// stderrLogger builds the logger for commands whose stdout carries data.
func (a *application) stderrLogger() *slog.Logger {
	w := a.logOut
	if w == nil {
		w = os.Stderr
	}
	return newLogger(w, a.config.App.LogLevel)
}

// RunIndex syncs the vault into the relational index.
func RunIndex(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.stderrLogger()

	if cfg.Vault.Path == "" {
		return fmt.Errorf("index: vault path is required")
	}
	if cfg.SQLite.Path == "" {
		return fmt.Errorf("index: sqlite path is required")
	}

	_, files, err := openVault(cfg, logger)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Driver, cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	logger.Info("Indexing vault",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("driver", cfg.SQLite.Driver))

	if err := index.Sync(ctx, db, files, logger); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}

// MatrixRequest selects the matrix RunMatrix writes.
type MatrixRequest struct {
	Query    graphservice.Query
	Kind     graphservice.MatrixKind
	Directed bool
	Reverse  bool
	// Labels names the row and column labels: "title" (default), "id" or "file".
	Labels string
}

// RunMatrix builds the graph once and writes the requested matrix as CSV to
// the configured output (stdout by default).
func RunMatrix(ctx context.Context, req MatrixRequest, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.stderrLogger()

	b, err := openBackend(app.config, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.svc.Matrix(ctx, req.Query, req.Kind, req.Directed, req.Reverse)
	if err != nil {
		return fmt.Errorf("matrix: %w", err)
	}
	labels, err := res.Labels(req.Labels)
	if err != nil {
		return fmt.Errorf("matrix: %w", err)
	}

	var out io.Writer = os.Stdout
	if app.out != nil {
		out = app.out
	}
	if err := export.WriteCSV(out, labels, res.Matrix); err != nil {
		return fmt.Errorf("matrix: write csv: %w", err)
	}

	logger.Info("matrix written",
		slog.String("kind", string(res.Kind)),
		slog.Bool("directed", res.Directed),
		slog.Bool("reverse", res.Reverse),
		slog.Int("nodes", len(labels)))
	return nil
}

// RunMCP serves the graph tools over stdio until stdin closes or the process
// is signalled.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.stderrLogger()

	b, err := openBackend(app.config, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if _, err := b.svc.Rebuild(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(b.svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
