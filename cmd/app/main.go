package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/zettelgraph/internal"
	"github.com/starford/zettelgraph/internal/graphservice"
	pkgconfig "github.com/starford/zettelgraph/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	// An explicitly named config file must exist; the default one may not.
	if cmd.IsSet("config") {
		if err := pkgconfig.Decode(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if v := cmd.String("vault"); v != "" {
		cfg.Vault.Path = v
	}
	if cmd.Bool("recursive") {
		cfg.Vault.Recursive = true
	}
	if s := cmd.String("source"); s != "" {
		cfg.Source.Kind = s
	}
	if cmd.Bool("sync") {
		cfg.Source.Sync = true
	}
	if db := cmd.String("db"); db != "" {
		cfg.SQLite.Path = db
	}

	for _, p := range []*string{&cfg.Vault.Path, &cfg.SQLite.Path} {
		expanded, err := pkgconfig.ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	if err := pkgconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runIndex(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunIndex(ctx, internal.WithConfig(cfg))
}

func runMatrix(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kind, err := graphservice.ParseMatrixKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	opts := []internal.Option{internal.WithConfig(cfg)}
	if path := cmd.String("output"); path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		opts = append(opts, internal.WithOutput(f))
	}

	req := internal.MatrixRequest{
		Query: graphservice.Query{
			Tags:          cmd.StringSlice("tag"),
			Exclude:       cmd.Bool("exclude"),
			Regex:         cmd.Bool("regex"),
			RemoveOrphans: cmd.Bool("remove-orphans"),
		},
		Kind:     kind,
		Directed: cmd.Bool("directed"),
		Reverse:  cmd.Bool("reverse"),
		Labels:   cmd.String("labels"),
	}
	return internal.RunMatrix(ctx, req, opts...)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "zettelgraph",
		Usage:   "Build a link graph from Org and Markdown notes and serve it over HTTP",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Note directory (overrides vault.path)",
				Sources: cli.EnvVars("ZETTELGRAPH_VAULT"),
			},
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "Scan sub-directories of the vault",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Record source: files or sqlite (overrides source.kind)",
			},
			&cli.BoolFlag{
				Name:  "sync",
				Usage: "With the sqlite source, upsert vault notes into the index before each build",
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite index path (overrides sqlite.path)",
				Sources: cli.EnvVars("ZETTELGRAPH_DB"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Sync the vault into the SQLite index",
				Action: runIndex,
			},
			{
				Name:   "matrix",
				Usage:  "Write the adjacency or distance matrix of the note graph as CSV",
				Action: runMatrix,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "distance or adjacency",
						Value: "distance",
					},
					&cli.BoolFlag{
						Name:  "directed",
						Usage: "Follow links in their direction only",
					},
					&cli.BoolFlag{
						Name:  "reverse",
						Usage: "Use incoming instead of outgoing links (with --directed)",
					},
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Keep notes having this tag (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "exclude",
						Usage: "Drop notes having any --tag instead of keeping them",
					},
					&cli.BoolFlag{
						Name:  "regex",
						Usage: "Match --tag values as patterns anchored at the tag start",
					},
					&cli.BoolFlag{
						Name:  "remove-orphans",
						Usage: "Drop notes without links after filtering",
					},
					&cli.StringFlag{
						Name:  "labels",
						Usage: "Row and column labels: title, id or file",
						Value: "title",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "CSV file to write (- for stdout)",
						Value:   "-",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve graph tools to LLM clients over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
