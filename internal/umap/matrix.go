package umap

import (
	"fmt"
)

// Matrix is a dense row-major matrix. Rows are contiguous in Data so a
// row can be handed out as a sub-slice without copying.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// FromRows copies rows into a new matrix. Every row must have the same
// non-zero length.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(rows[0])
	if dim == 0 {
		return nil, fmt.Errorf("row 0 has no columns: %w", ErrEmptyInput)
	}

	m := NewMatrix(len(rows), dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d dimension mismatch expected %d got %d", i, dim, len(row))
		}
		copy(m.Data[i*dim:(i+1)*dim], row)
	}
	return m, nil
}

// Row returns a view of row i. Writes go through to the matrix.
func (m *Matrix) Row(i int) []float64 {
	start := i * m.Cols
	return m.Data[start : start+m.Cols : start+m.Cols]
}

func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.Cols+j] = v
}
