// 11 Mar 2024

package annot

import (
	"context"
	"time"

	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

// CheckConnectivity is true if every two pairs in m have the same
// ladder between their templates as between their candidates.
func CheckConnectivity(c Context, m Matching) bool {
	for _, p1 := range m {
		for _, p2 := range m {
			if c.TConn.At(p1.T, p2.T) != c.CConn.At(p1.C, p2.C) {
				return false
			}
		}
	}
	return true
}

// Combined runs DynProg. If that breaks ladders, it runs BranchAndBound
// on the strands alone and then DynProg again, allowing only the
// strand pairs found by BranchAndBound and any helix with any helix.
func Combined(ctx context.Context, c Context) (Matching, error) {
	if err := c.ValidateOrdering(); err != nil {
		return nil, err
	}
	if err := c.ValidateBetaGraph(); err != nil {
		return nil, err
	}
	dp, err := DynProg(ctx, c)
	if err != nil {
		return nil, err
	}
	if CheckConnectivity(c, dp) {
		return dp, nil
	}
	c.Log.Debug.Printf("Combined: dynamic programming broke ladders. Trying again with strands from branch and bound.")

	tIdx, cIdx := sheetIndices(c.Templates), sheetIndices(c.Candidates)
	bbCtx := NewContext(c.Scoring, pick(c.Templates, tIdx), pick(c.Candidates, cIdx))
	bbCtx.TConn, bbCtx.CConn = c.TConn.Sub(tIdx), c.CConn.Sub(cIdx)
	bbCtx.Log = c.Log
	start := time.Now()
	guide, err := BranchAndBound(ctx, bbCtx)
	if err != nil {
		return nil, err
	}
	c.Log.Debug.Printf("Combined: branch and bound on %d x %d strands took %v", len(tIdx), len(cIdx), time.Since(start))

	m, n := len(c.Templates), len(c.Candidates)
	mask := dense.NewMask(m, n)
	for i, t := range c.Templates {
		for j, q := range c.Candidates {
			mask.Set(i, j, !t.IsSheet() && !q.IsSheet())
		}
	}
	for _, p := range guide {
		mask.Set(tIdx[p.T], cIdx[p.C], true)
	}
	c.Log.Debug.Printf("Combined: guide allows %d of %d pairs", mask.Count(), m*n)
	dpCtx := NewContext(c.Scoring, c.Templates, c.Candidates)
	dpCtx.Guide = mask
	dpCtx.Log = c.Log
	return DynProg(ctx, dpCtx)
}

// sheetIndices lists the strands.
func sheetIndices(s []sse.SSE) []int {
	var ret []int
	for i, x := range s {
		if x.IsSheet() {
			ret = append(ret, i)
		}
	}
	return ret
}

func pick(s []sse.SSE, idx []int) []sse.SSE {
	ret := make([]sse.SSE, len(idx))
	for i, k := range idx {
		ret[i] = s[k]
	}
	return ret
}
