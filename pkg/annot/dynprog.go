// 10 Mar 2024

package annot

import (
	"context"

	"github.com/andrew-torda/matrix"
)

// Directions for the traceback.
const (
	pair  byte = iota // diagonal, template and candidate matched
	skipT             // vertical, over rows, template left out
	skipC             // horizontal, over columns, candidate left out
)

// DynProg is an order preserving alignment of templates and
// candidates. It ignores ladders completely. Leaving out a template
// costs SkipTemplate, leaving out a candidate costs SkipCandidate and a
// pair costs Metric. Pairs are only possible if the types match and
// the guide allows it.
// When leaving out a template or a candidate cost the same, we leave out
// the template. A pair wins if it is no worse than the best skip.
// Both sides must be ordered.
func DynProg(_ context.Context, c Context) (Matching, error) {
	if err := c.ValidateOrdering(); err != nil {
		return nil, err
	}
	m, n := len(c.Templates), len(c.Candidates)
	skipTPen := make([]float64, m)
	for i, t := range c.Templates {
		skipTPen[i] = c.SkipTemplate(t)
	}
	skipCPen := make([]float64, n)
	for j, q := range c.Candidates {
		skipCPen[j] = c.SkipCandidate(q)
	}
	metric := make([][]float64, m)
	for i, t := range c.Templates {
		metric[i] = make([]float64, n)
		for j, q := range c.Candidates {
			metric[i][j] = c.Metric(t, q)
		}
	}

	dp := make([][]float64, m+1) // dp[i][j] is the cost of the first i templates and j candidates
	for i := range dp {
		dp[i] = make([]float64, n+1)
	}
	dirtmp := matrix.NewBMatrix2d(m+1, n+1)
	dir := dirtmp.Mat
	for i := 1; i <= m; i++ {
		dp[i][0] = dp[i-1][0] + skipTPen[i-1]
		dir[i][0] = skipT
	}
	for j := 1; j <= n; j++ {
		dp[0][j] = dp[0][j-1] + skipCPen[j-1]
		dir[0][j] = skipC
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			up := dp[i-1][j] + skipTPen[i-1]
			left := dp[i][j-1] + skipCPen[j-1]
			if up <= left {
				dp[i][j], dir[i][j] = up, skipT
			} else {
				dp[i][j], dir[i][j] = left, skipC
			}
			if c.canPair(i-1, j-1) {
				if d := dp[i-1][j-1] + metric[i-1][j-1]; d <= dp[i][j] {
					dp[i][j], dir[i][j] = d, pair
				}
			}
		}
	}
	dbg := c.Log.Debug
	if dbg.Dumping() {
		tl, cl := labels(c.Templates), labels(c.Candidates)
		mval := func(i, j int) float64 { return metric[i][j] }
		if err := dbg.DumpTSV("metric_matrix", tl, cl, mval); err != nil {
			return nil, err
		}
		if err := dbg.DumpPNG("metric_matrix", tl, cl, mval); err != nil {
			return nil, err
		}
		if err := dbg.DumpTSV("dynprog_matrix", append([]string{"-"}, tl...), append([]string{"-"}, cl...),
			func(i, j int) float64 { return dp[i][j] }); err != nil {
			return nil, err
		}
	}
	return traceback(dir, m, n), nil
}

// traceback walks back from the bottom right corner and returns the
// pairs in order.
func traceback(dir [][]byte, m, n int) Matching {
	ret := make(Matching, 0, min(m, n))
	for i, j := m, n; i > 0 || j > 0; {
		switch dir[i][j] {
		case pair:
			ret = append(ret, Pair{i - 1, j - 1})
			i--
			j--
		case skipT:
			i--
		case skipC:
			j--
		}
	}
	for i, j := 0, len(ret)-1; i < j; i, j = i+1, j-1 {
		ret[i], ret[j] = ret[j], ret[i]
	}
	return ret
}
