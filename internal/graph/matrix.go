package graph

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense square matrix indexed by node order. It satisfies
// gonum's mat.Matrix so results can be passed to gonum directly.
type Matrix struct {
	n    int
	data []float64
}

var _ mat.Matrix = (*Matrix)(nil)

func newMatrix(n int, fill float64) *Matrix {
	m := &Matrix{n: n, data: make([]float64, n*n)}
	for i := range m.data {
		m.data[i] = fill
	}
	return m
}

// Dims returns the matrix dimensions.
func (m *Matrix) Dims() (int, int) { return m.n, m.n }

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// T returns a transposed view.
func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

func (m *Matrix) set(i, j int, v float64) { m.data[i*m.n+j] = v }

// Transpose returns a new matrix with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	t := newMatrix(m.n, 0)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			t.set(j, i, m.At(i, j))
		}
	}
	return t
}

// Rows returns a copy of the matrix as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, m.n)
	for i := range out {
		out[i] = append([]float64(nil), m.data[i*m.n:(i+1)*m.n]...)
	}
	return out
}

// AdjacencyMatrix returns the N×N edge matrix over the node order: 1 where
// an edge exists, +Inf elsewhere, including the diagonal.
//
// Undirected, (i, j) and (j, i) are 1 when either node links to the other
// and reverse is ignored. Directed, (i, j) is 1 when node i links to node j;
// reverse returns the transpose, i.e. every edge flipped.
//
// Construction is O(N²) set lookups.
func (g *Graph) AdjacencyMatrix(directed, reverse bool) *Matrix {
	n := len(g.nodes)
	adj := newMatrix(n, math.Inf(1))

	if directed {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j && g.nodes[i].Links(g.nodes[j], true) {
					adj.set(i, j, 1)
				}
			}
		}
		if reverse {
			return adj.Transpose()
		}
		return adj
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.nodes[i].Links(g.nodes[j], false) {
				adj.set(i, j, 1)
				adj.set(j, i, 1)
			}
		}
	}
	return adj
}
