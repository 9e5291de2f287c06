// 4 Mar 2024

package dense

import (
	"fmt"

	"github.com/andrew-torda/matrix"
)

// Mask is a rectangular matrix of booleans. The bytes are kept in a
// BMatrix2d, one byte per element.
type Mask struct {
	m *matrix.BMatrix2d
	r int
	c int
}

// NewMask is all false.
func NewMask(r, c int) Mask { return Mask{m: matrix.NewBMatrix2d(r, c), r: r, c: c} }

// FullMask is all true.
func FullMask(r, c int) Mask {
	m := NewMask(r, c)
	for _, row := range m.m.Mat {
		for j := range row {
			row[j] = 1
		}
	}
	return m
}

// Present is false for the zero value.
func (m Mask) Present() bool { return m.m != nil }

// Size returns rows and columns. This works even with zero rows, where
// the underlying BMatrix2d cannot tell us.
func (m Mask) Size() (int, int) { return m.r, m.c }

// At element i, j.
func (m Mask) At(i, j int) bool { return m.m.Mat[i][j] != 0 }

// Set element i, j. Only while building a new matrix.
func (m Mask) Set(i, j int, v bool) {
	var b byte
	if v {
		b = 1
	}
	m.m.Mat[i][j] = b
}

// Resized copies into a bigger matrix. New elements are false.
func (m Mask) Resized(r, c int) Mask {
	if !m.Present() {
		return m
	}
	if r < m.r || c < m.c {
		panic("program bug, Mask cannot shrink")
	}
	ret := NewMask(r, c)
	for i, row := range m.m.Mat {
		copy(ret.m.Mat[i], row)
	}
	return ret
}

// Sub picks rows and columns. A nil index slice means keep them all.
func (m Mask) Sub(rows, cols []int) Mask {
	if !m.Present() {
		return m
	}
	rows, cols = identIfNil(rows, m.r), identIfNil(cols, m.c)
	ret := NewMask(len(rows), len(cols))
	for i, ii := range rows {
		for j, jj := range cols {
			ret.m.Mat[i][j] = m.m.Mat[ii][jj]
		}
	}
	return ret
}

// Permuted reorders rows and columns. New element i, j is old element
// rowPerm[i], colPerm[j].
func (m Mask) Permuted(rowPerm, colPerm []int) (Mask, error) {
	if !m.Present() {
		return m, nil
	}
	if (rowPerm != nil && len(rowPerm) != m.r) || (colPerm != nil && len(colPerm) != m.c) {
		return Mask{}, fmt.Errorf("permuting %d x %d by %d, %d: %w",
			m.r, m.c, len(rowPerm), len(colPerm), ErrDims)
	}
	return m.Sub(rowPerm, colPerm), nil
}

// Transposed swaps rows and columns.
func (m Mask) Transposed() Mask {
	if !m.Present() {
		return m
	}
	ret := NewMask(m.c, m.r)
	for i, row := range m.m.Mat {
		for j, b := range row {
			ret.m.Mat[j][i] = b
		}
	}
	return ret
}

// Symmetric checks a square mask.
func (m Mask) Symmetric() bool {
	if m.r != m.c {
		return false
	}
	for i := 0; i < m.r; i++ {
		for j := i + 1; j < m.c; j++ {
			if m.At(i, j) != m.At(j, i) {
				return false
			}
		}
	}
	return true
}

// Count is the number of true elements.
func (m Mask) Count() int {
	n := 0
	if !m.Present() {
		return 0
	}
	for _, row := range m.m.Mat {
		for _, b := range row {
			if b != 0 {
				n++
			}
		}
	}
	return n
}

func identIfNil(idx []int, n int) []int {
	if idx != nil {
		return idx
	}
	idx = make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
