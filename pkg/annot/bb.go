// 10 Mar 2024

package annot

import (
	"context"
	"time"

	"github.com/andrew-torda/sse_annot/pkg/mwclique"
)

// BranchAndBound finds the matching with the best total score which
// keeps order and keeps every ladder. Two pairs (i1,j1) and (i2,j2) can
// both be used if
//   - i1 == i2 exactly when j1 == j2,
//   - i1 < i2 exactly when j1 < j2,
//   - the ladder between templates i1, i2 is the same as between
//     candidates j1, j2,
//   - neither side excludes the other.
//
// The score of a pair is SkipTemplate + SkipCandidate - Metric, so
// the best matching has the lowest cost. Pairs with a score of zero or
// less are never used.
func BranchAndBound(ctx context.Context, c Context) (Matching, error) {
	if err := c.ValidateOrdering(); err != nil {
		return nil, err
	}
	if err := c.ValidateBetaGraph(); err != nil {
		return nil, err
	}
	m, n := len(c.Templates), len(c.Candidates)
	score := make([]float64, m*n) // index is i*n + j
	for i, t := range c.Templates {
		for j, q := range c.Candidates {
			if c.canPair(i, j) {
				score[i*n+j] = c.SkipTemplate(t) + c.SkipCandidate(q) - c.Metric(t, q)
			}
		}
	}
	dbg := c.Log.Debug
	if dbg.Dumping() {
		tl, cl := labels(c.Templates), labels(c.Candidates)
		if err := dbg.DumpTSV("score_matrix", tl, cl, func(i, j int) float64 { return score[i*n+j] }); err != nil {
			return nil, err
		}
		if err := dbg.DumpTSV("c_connectivity", cl, cl, func(i, j int) float64 { return float64(c.CConn.At(i, j)) }); err != nil {
			return nil, err
		}
	}

	edge := func(u, v int) bool {
		i1, j1 := u/n, u%n
		i2, j2 := v/n, v%n
		return (i1 == i2) == (j1 == j2) &&
			(i1 < i2) == (j1 < j2) &&
			c.TConn.At(i1, i2) == c.CConn.At(j1, j2) &&
			!excluded(c.TExcl, i1, i2) &&
			!excluded(c.CExcl, j1, j2) &&
			score[u] > 0 && score[v] > 0
	}
	start := time.Now()
	dbg.Printf("BranchAndBound: %d vs. %d vertices", m, n)
	clique, stats, err := mwclique.Solve(ctx, mwclique.Problem{
		N: m * n, W: score, Edge: edge, MaxSize: min(m, n),
	})
	dbg.Printf("BranchAndBound: %d eligible vertices, %d selected, %d iterations, %v",
		stats.Eligible, stats.Size, stats.Iterations, time.Since(start))
	if err != nil {
		return nil, err
	}
	ret := make(Matching, len(clique))
	for k, u := range clique {
		ret[k] = Pair{u / n, u % n}
	}
	return ret.sorted(), nil
}
