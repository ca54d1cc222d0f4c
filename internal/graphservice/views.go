package graphservice

import "github.com/starford/zettelgraph/internal/graph"

// Stats summarises a graph.
type Stats struct {
	Nodes   int            `json:"nodes"`
	Edges   int            `json:"edges"`
	Orphans int            `json:"orphans"`
	Tags    map[string]int `json:"tags"`
}

// StatsOf counts nodes, directed edges, orphans and tag usage in g.
func StatsOf(g *graph.Graph) Stats {
	st := Stats{
		Nodes:   g.Len(),
		Edges:   g.EdgeCount(),
		Orphans: len(g.Orphans()),
		Tags:    map[string]int{},
	}
	for _, n := range g.Nodes() {
		for _, t := range n.Tags() {
			st.Tags[t]++
		}
	}
	return st
}

// ViewOf renders n with its backlinks inside g.
func ViewOf(g *graph.Graph, n *graph.Node) NoteView {
	return NoteView{
		ID:        n.ID(),
		Title:     n.Title(),
		File:      n.File(),
		Tags:      n.Tags(),
		LinksTo:   n.LinksTo(),
		Backlinks: g.Backlinks(n.ID()),
	}
}

// Views renders every node of g in matrix order.
func Views(g *graph.Graph) []NoteView {
	nodes := g.Nodes()
	out := make([]NoteView, len(nodes))
	for i, n := range nodes {
		out[i] = ViewOf(g, n)
	}
	return out
}
