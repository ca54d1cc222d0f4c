// Package graph builds a link graph over notes and derives adjacency and
// shortest-path distance matrices from it.
//
// A Graph is never modified after construction. Filtering and orphan
// removal return new graphs that share the original Node values.
package graph

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/zettelgraph/internal/apperr"
	"github.com/starford/zettelgraph/internal/models"
)

// Graph is an ordered collection of nodes with unique ids. The order is the
// ingestion order and indexes matrix rows and columns.
type Graph struct {
	nodes []*Node
}

// LinkRow is the relational view of one node's outbound links.
type LinkRow struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Targets []string `json:"targets"`
}

// New builds a graph from records. Records without an identifier are
// dropped with a warning naming their file; a record repeating an earlier
// id is dropped the same way. Zero records yield a valid empty graph.
func New(records []models.Record, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}

	nodes := make([]*Node, 0, len(records))
	seen := make(map[string]string, len(records))
	for _, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			logger.Warn("graph: note has no ID property, removing from graph",
				slog.String("file", filepath.Base(r.File)),
				slog.String("error", apperr.ErrMissingIdentifier.Error()))
			continue
		}
		if first, dup := seen[id]; dup {
			logger.Warn("graph: duplicate note ID, removing from graph",
				slog.String("id", id),
				slog.String("file", filepath.Base(r.File)),
				slog.String("first_file", filepath.Base(first)))
			continue
		}
		seen[id] = r.File
		nodes = append(nodes, NewNode(id, r.Title, r.File, r.Tags, r.Links))
	}

	return &Graph{nodes: nodes}
}

// derive returns a graph over a subset of g's nodes.
func (g *Graph) derive(keep func(*Node) bool) *Graph {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if keep(n) {
			nodes = append(nodes, n)
		}
	}
	return &Graph{nodes: nodes}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in matrix order. The slice is a copy.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	for _, n := range g.nodes {
		if n.id == id {
			return n, true
		}
	}
	return nil, false
}

// IDs returns node ids in matrix order.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.id
	}
	return out
}

// Titles returns node titles in matrix order.
func (g *Graph) Titles() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.title
	}
	return out
}

// Files returns source paths in matrix order, reduced to base names when
// base is set.
func (g *Graph) Files(base bool) []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.file
		if base {
			out[i] = filepath.Base(n.file)
		}
	}
	return out
}

// Links returns each node's title and outbound link targets in matrix order.
func (g *Graph) Links() []LinkRow {
	out := make([]LinkRow, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = LinkRow{ID: n.id, Title: n.title, Targets: n.LinksTo()}
	}
	return out
}

// EdgeCount returns the number of ordered pairs (i, j) where node i links
// to node j within this graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for i, a := range g.nodes {
		for j, b := range g.nodes {
			if i != j && a.Links(b, true) {
				count++
			}
		}
	}
	return count
}

// Backlinks returns the ids of nodes linking to id, in matrix order.
func (g *Graph) Backlinks(id string) []string {
	out := []string{}
	for _, n := range g.nodes {
		if _, ok := n.linksTo[id]; ok && n.id != id {
			out = append(out, n.id)
		}
	}
	return out
}
