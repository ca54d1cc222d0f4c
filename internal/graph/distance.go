package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// DistanceMatrix returns all-pairs shortest-path hop counts over the
// adjacency matrix built with the same flags. Unreachable pairs are +Inf
// and the diagonal is 0. Nothing is cached between calls.
func (g *Graph) DistanceMatrix(directed, reverse bool) *Matrix {
	adj := g.AdjacencyMatrix(directed, reverse)
	n, _ := adj.Dims()
	dist := newMatrix(n, math.Inf(1))
	if n == 0 {
		return dist
	}

	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		wg.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if w := adj.At(i, j); i != j && !math.IsInf(w, 1) {
				wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
			}
		}
	}

	// Edge weights are all 1, so there is no negative cycle to report.
	paths, _ := path.FloydWarshall(wg)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dist.set(i, j, paths.Weight(int64(i), int64(j)))
		}
		dist.set(i, i, 0)
	}
	return dist
}
