// Package export renders matrices as labeled tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Inf is the text written for +Inf cells.
const Inf = "inf"

// WriteCSV writes m as a CSV table whose header row and first column hold
// labels. len(labels) must match the matrix dimensions.
func WriteCSV(w io.Writer, labels []string, m mat.Matrix) error {
	r, c := m.Dims()
	if len(labels) != r || r != c {
		return fmt.Errorf("export: %d labels for a %dx%d matrix", len(labels), r, c)
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, c+1)
	header = append(header, "")
	header = append(header, labels...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	row := make([]string, c+1)
	for i := 0; i < r; i++ {
		row[0] = labels[i]
		for j := 0; j < c; j++ {
			row[j+1] = FormatValue(m.At(i, j))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatValue renders a cell: integers without a fraction, +Inf as Inf.
func FormatValue(v float64) string {
	if math.IsInf(v, 1) {
		return Inf
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// JSONRows converts m into rows encoding/json can marshal; +Inf becomes nil.
func JSONRows(m mat.Matrix) [][]*float64 {
	r, c := m.Dims()
	out := make([][]*float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]*float64, c)
		for j := 0; j < c; j++ {
			if v := m.At(i, j); !math.IsInf(v, 0) && !math.IsNaN(v) {
				out[i][j] = &v
			}
		}
	}
	return out
}
