// 4 Mar 2024

// Package dense has the small square and rectangular matrices used to
// describe an annotation problem. Conn holds beta-ladder types between
// SSEs, Mask holds yes/no information such as which pairs may be
// matched or which SSEs exclude each other.
//
// Values are treated as immutable. Resized, Permuted and friends return
// new matrices. Set is only for filling in a matrix you have just made.
// The zero value of each type means "absent" and is different from an
// allocated matrix of size zero. Check with Present().
package dense

import (
	"errors"
	"fmt"
)

// ErrDims is returned when matrix dimensions do not fit what they are
// being used with.
var ErrDims = errors.New("matrix dimensions do not match")

// Ladder types
const (
	Anti     int8 = -1
	NoLadder int8 = 0
	Parallel int8 = 1
)

// Edge is one beta-ladder between two SSEs, given by index.
type Edge struct {
	A, B int
	Type int8
}

// Conn is a square matrix of ladder types.
type Conn struct {
	n int
	d []int8
}

// NewConn makes an n by n matrix with no ladders.
func NewConn(n int) Conn { return Conn{n: n, d: make([]int8, n*n)} }

// ConnFromEdges fills a matrix symmetrically from a list of ladders.
func ConnFromEdges(n int, edges []Edge) (Conn, error) {
	c := NewConn(n)
	for _, e := range edges {
		if e.A < 0 || e.B < 0 || e.A >= n || e.B >= n {
			return Conn{}, fmt.Errorf("ladder %d-%d with only %d SSEs: %w", e.A, e.B, n, ErrDims)
		}
		if e.Type != Anti && e.Type != Parallel {
			return Conn{}, fmt.Errorf("ladder %d-%d has type %d, want -1 or 1", e.A, e.B, e.Type)
		}
		c.Set(e.A, e.B, e.Type)
		c.Set(e.B, e.A, e.Type)
	}
	return c, nil
}

// Present is false for the zero value.
func (c Conn) Present() bool { return c.d != nil }

// N is the number of rows (and columns).
func (c Conn) N() int { return c.n }

// At returns element i, j.
func (c Conn) At(i, j int) int8 { return c.d[i*c.n+j] }

// Set element i, j. Only use this on a matrix you are building.
func (c Conn) Set(i, j int, v int8) { c.d[i*c.n+j] = v }

// Resized copies into a bigger matrix. New elements are zero.
func (c Conn) Resized(n int) Conn {
	if n < c.n {
		panic("program bug, Conn cannot shrink")
	}
	r := NewConn(n)
	for i := 0; i < c.n; i++ {
		copy(r.d[i*n:i*n+c.n], c.d[i*c.n:(i+1)*c.n])
	}
	return r
}

// Sub picks out rows and columns. New element i, j is old element
// idx[i], idx[j]. With a permutation, this is reordering.
func (c Conn) Sub(idx []int) Conn {
	if !c.Present() {
		return c
	}
	r := NewConn(len(idx))
	for i, ii := range idx {
		for j, jj := range idx {
			r.d[i*r.n+j] = c.At(ii, jj)
		}
	}
	return r
}

// Permuted is Sub, but checks that perm covers the matrix.
func (c Conn) Permuted(perm []int) (Conn, error) {
	if c.Present() && len(perm) != c.n {
		return Conn{}, fmt.Errorf("permutation of %d for %d x %d: %w", len(perm), c.n, c.n, ErrDims)
	}
	return c.Sub(perm), nil
}

// Symmetric checks At(i,j) == At(j,i) everywhere.
func (c Conn) Symmetric() bool {
	for i := 0; i < c.n; i++ {
		for j := i + 1; j < c.n; j++ {
			if c.At(i, j) != c.At(j, i) {
				return false
			}
		}
	}
	return true
}

// Edges lists the ladders with A < B.
func (c Conn) Edges() []Edge {
	var ret []Edge
	for i := 0; i < c.n; i++ {
		for j := i + 1; j < c.n; j++ {
			if v := c.At(i, j); v != NoLadder {
				ret = append(ret, Edge{i, j, v})
			}
		}
	}
	return ret
}

// Degree counts the ladders of vertex i with the given type.
func (c Conn) Degree(i int, typ int8) int {
	n := 0
	for j := 0; j < c.n; j++ {
		if c.At(i, j) == typ {
			n++
		}
	}
	return n
}
