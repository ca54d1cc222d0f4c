// Package graphservice keeps the current note graph for long-running
// frontends (HTTP API, MCP server) and answers queries against it.
package graphservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/starford/zettelgraph/internal/apperr"
	"github.com/starford/zettelgraph/internal/graph"
	"github.com/starford/zettelgraph/internal/source"
)

// Query selects a sub-graph. An empty Tags list means no tag filter.
type Query struct {
	Tags          []string
	Exclude       bool
	Regex         bool
	RemoveOrphans bool
}

// MatrixKind selects the matrix to compute.
type MatrixKind string

const (
	KindAdjacency MatrixKind = "adjacency"
	KindDistance  MatrixKind = "distance"
)

// ParseMatrixKind validates a matrix kind name; empty means distance.
func ParseMatrixKind(s string) (MatrixKind, error) {
	switch MatrixKind(s) {
	case "", KindDistance:
		return KindDistance, nil
	case KindAdjacency:
		return KindAdjacency, nil
	default:
		return "", fmt.Errorf("%w: unknown matrix kind %q", apperr.ErrInvalidArgument, s)
	}
}

// MatrixResult is a matrix with the labels aligned to its rows and columns.
type MatrixResult struct {
	Kind     MatrixKind
	Directed bool
	Reverse  bool
	IDs      []string
	Titles   []string
	Files    []string
	Matrix   *graph.Matrix
}

// Labels returns the row labels selected by name: "title" (the default),
// "id" or "file".
func (r *MatrixResult) Labels(by string) ([]string, error) {
	switch by {
	case "", "title":
		return r.Titles, nil
	case "id":
		return r.IDs, nil
	case "file":
		return r.Files, nil
	default:
		return nil, fmt.Errorf("%w: unknown label kind %q", apperr.ErrInvalidArgument, by)
	}
}

// NoteView is one node with its backlinks.
type NoteView struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	File      string   `json:"file"`
	Tags      []string `json:"tags"`
	LinksTo   []string `json:"links_to"`
	Backlinks []string `json:"backlinks"`
}

// Service builds graphs from a source and serves the latest one.
type Service struct {
	src      source.Source
	prepare  func(context.Context) error
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics

	current atomic.Pointer[graph.Graph]
	buildMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithPrepare runs fn before every rebuild, e.g. to sync the relational index
// from the vault. A failing prepare step is logged and the rebuild proceeds.
func WithPrepare(fn func(context.Context) error) Option {
	return func(s *Service) {
		s.prepare = fn
	}
}

// New creates a service reading from src.
func New(src source.Source, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	s := &Service{
		src:      src,
		logger:   logger,
		registry: reg,
		metrics:  newMetrics(reg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry holding the service metrics.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Rebuild reads all records and replaces the current graph. On error the
// previous graph stays in place.
func (s *Service) Rebuild(ctx context.Context) (*graph.Graph, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	if s.prepare != nil {
		if err := s.prepare(ctx); err != nil {
			s.logger.Warn("graph: prepare failed", slog.String("error", err.Error()))
		}
	}

	records, err := s.src.Records(ctx)
	if err != nil {
		s.metrics.builds.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("graph: read records: %w", err)
	}

	g := graph.New(records, s.logger)
	s.current.Store(g)

	edges := g.EdgeCount()
	s.metrics.builds.WithLabelValues("ok").Inc()
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.nodes.Set(float64(g.Len()))
	s.metrics.edges.Set(float64(edges))
	s.metrics.dropped.Add(float64(len(records) - g.Len()))

	s.logger.Info("graph: built",
		slog.Int("records", len(records)),
		slog.Int("nodes", g.Len()),
		slog.Int("edges", edges),
		slog.Duration("took", time.Since(start)))
	return g, nil
}

// Ready reports whether a graph has been built.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Graph returns the current graph, building it on first use.
func (s *Service) Graph(ctx context.Context) (*graph.Graph, error) {
	if g := s.current.Load(); g != nil {
		return g, nil
	}
	return s.Rebuild(ctx)
}

// Select applies q to the current graph: tag filter first, then orphan
// removal on the filtered graph.
func (s *Service) Select(ctx context.Context, q Query) (*graph.Graph, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(g, q)
}

// Apply runs q against g without touching g.
func Apply(g *graph.Graph, q Query) (*graph.Graph, error) {
	if len(q.Tags) > 0 {
		var err error
		if g, err = g.FilterTags(q.Tags, q.Exclude, q.Regex); err != nil {
			return nil, err
		}
	}
	if q.RemoveOrphans {
		g = g.RemoveOrphans()
	}
	return g, nil
}

// Matrix computes the requested matrix over the selected sub-graph.
func (s *Service) Matrix(ctx context.Context, q Query, kind MatrixKind, directed, reverse bool) (*MatrixResult, error) {
	g, err := s.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	return ComputeMatrix(g, kind, directed, reverse), nil
}

// ComputeMatrix builds the matrix of the given kind over g.
func ComputeMatrix(g *graph.Graph, kind MatrixKind, directed, reverse bool) *MatrixResult {
	res := &MatrixResult{
		Kind:     kind,
		Directed: directed,
		Reverse:  reverse,
		IDs:      g.IDs(),
		Titles:   g.Titles(),
		Files:    g.Files(false),
	}
	if kind == KindAdjacency {
		res.Matrix = g.AdjacencyMatrix(directed, reverse)
	} else {
		res.Matrix = g.DistanceMatrix(directed, reverse)
	}
	return res
}

// Note returns the node with id and its backlinks in the current graph.
func (s *Service) Note(ctx context.Context, id string) (*NoteView, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	n, ok := g.Node(id)
	if !ok {
		return nil, fmt.Errorf("note %q: %w", id, apperr.ErrNotFound)
	}
	v := ViewOf(g, n)
	return &v, nil
}
