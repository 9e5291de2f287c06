// 8 Mar 2024

// Package annot matches template SSEs against candidate SSEs found in
// a query structure.
//
// A problem is described by a Context: the two lists of SSEs, the
// scoring functions, the beta-ladder connectivity on each side and
// some optional restrictions. Strategies take a Context and return a
// Matching, a list of (template, candidate) index pairs.
//
//	DynProg         order preserving dynamic programming, ignores ladders
//	BranchAndBound  best ordered matching which keeps all ladders
//	Mixed           matches helices and whole ladders, optionally with some slack in order
//	Combined        DynProg, then a ladder-guided DynProg if the first answer breaks ladders
//
// The Wrapper puts SSEs in order, calls a strategy and turns the
// matching into annotated SSEs with labels from the templates.
package annot

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/andrew-torda/sse_annot/pkg/common"
	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/diag"
)

var (
	ErrUnordered   = errors.New("SSEs are not ordered")
	ErrNoBetaGraph = errors.New("connectivity is missing")
	ErrDims        = dense.ErrDims
	ErrMixedLadder = errors.New("joint strand would have both parallel and antiparallel ladder to another strand")
	ErrConnSet     = errors.New("connectivity has already been set")
)

// Pair is one template index matched to a candidate index.
type Pair struct{ T, C int }

// Matching is what the strategies return.
type Matching []Pair

// sorted returns a copy in order of template, then candidate, with
// duplicates removed.
func (m Matching) sorted() Matching {
	ret := append(Matching(nil), m...)
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].T != ret[j].T {
			return ret[i].T < ret[j].T
		}
		return ret[i].C < ret[j].C
	})
	if len(ret) == 0 {
		return ret
	}
	out := ret[:1]
	for _, p := range ret[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// Injective is true if no template and no candidate appear twice.
func (m Matching) Injective() bool {
	ts, cs := make(map[int]bool), make(map[int]bool)
	for _, p := range m {
		if ts[p.T] || cs[p.C] {
			return false
		}
		ts[p.T], cs[p.C] = true, true
	}
	return true
}

func (m Matching) String() string {
	s := ""
	for i, p := range m {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("(%d,%d)", p.T, p.C)
	}
	return s
}

// Log says where warnings and debugging go. The zero value is silent.
type Log struct {
	Warn  io.Writer // WARN lines, usually os.Stderr
	Quiet bool
	Debug diag.Config
}

func (l Log) warnf(format string, a ...any) { common.Warnf(l.Warn, l.Quiet, format, a...) }
