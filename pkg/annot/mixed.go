// 11 Mar 2024

package annot

import (
	"context"
	"time"

	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/mwclique"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

// ladderScale weights each end of a ladder, so a ladder scores about
// as much as one strand.
const ladderScale = 0.5

// unit is what the mixed matcher matches. A helix, or a strand with no
// ladder, is (i, i, 0). A ladder is (first, second, type) with
// first < second.
type unit struct {
	first, second int
	kind          int8
}

// fstUnits gives the singletons first, then the ladders.
func fstUnits(s []sse.SSE, conn dense.Conn) []unit {
	var ret []unit
	for i, x := range s {
		if x.IsHelix() || (x.IsSheet() && conn.Degree(i, dense.Parallel)+conn.Degree(i, dense.Anti) == 0) {
			ret = append(ret, unit{i, i, 0})
		}
	}
	for _, e := range conn.Edges() {
		ret = append(ret, unit{e.A, e.B, e.Type})
	}
	return ret
}

// Order descriptors and the tables which say which descriptors agree.
// hardOrd is less, equal, greater. softOrd also has "much less" and
// "much greater" and the table lets neighbouring states agree.
func hardOrd(x, y int) int {
	switch {
	case x < y:
		return 0
	case x > y:
		return 2
	}
	return 1
}

func softOrd(x, y int) int { return min(max(-2, x-y), 2) + 2 }

var hardTable = [][]bool{
	{true, false, false},
	{false, true, false},
	{false, false, true},
}

var softTable = [][]bool{
	{true, true, false, false, false},
	{true, true, true, false, false},
	{false, true, true, true, false},
	{false, false, true, true, true},
	{false, false, false, true, true},
}

// orderAgrees says if x1 and x2 in the template are in the same order
// as y1 and y2 in the query.
func orderAgrees(soft bool, x1, x2, y1, y2 int) bool {
	if soft {
		return softTable[softOrd(x1, x2)][softOrd(y1, y2)]
	}
	return hardTable[hardOrd(x1, x2)][hardOrd(y1, y2)]
}

// Mixed matches helices and whole ladders. A ladder in the template
// can only go to a ladder of the same type in the query, so ladders
// are kept by construction. With soft set, the order of units may be
// slightly out in the query.
// A strand in several ladders can end up matched to more than one
// candidate. The Wrapper joins those.
func Mixed(ctx context.Context, c Context, soft bool) (Matching, error) {
	if err := c.ValidateOrdering(); err != nil {
		return nil, err
	}
	if err := c.ValidateBetaGraph(); err != nil {
		return nil, err
	}
	tu := fstUnits(c.Templates, c.TConn)
	cu := fstUnits(c.Candidates, c.CConn)
	m, n := len(tu), len(cu)

	pairScore := func(i, j int) float64 {
		return c.SkipTemplate(c.Templates[i]) + c.SkipCandidate(c.Candidates[j]) - c.Metric(c.Templates[i], c.Candidates[j])
	}
	score := make([]float64, m*n)
	for a, t := range tu {
		for b, q := range cu {
			if t.kind != q.kind || !c.canPair(t.first, q.first) || !c.canPair(t.second, q.second) {
				continue
			}
			if t.kind == 0 {
				score[a*n+b] = pairScore(t.first, q.first)
			} else {
				score[a*n+b] = ladderScale * (pairScore(t.first, q.first) + pairScore(t.second, q.second))
			}
		}
	}
	dbg := c.Log.Debug
	if dbg.Dumping() {
		if err := dbg.DumpTSV("score_matrix", unitLabels(c.Templates, tu), unitLabels(c.Candidates, cu),
			func(i, j int) float64 { return score[i*n+j] }); err != nil {
			return nil, err
		}
	}

	agree := func(x1, x2, y1, y2 int) bool { return orderAgrees(soft, x1, x2, y1, y2) }
	edge := func(u, v int) bool {
		a1, b1 := u/n, u%n
		a2, b2 := v/n, v%n
		t1, t2, q1, q2 := tu[a1], tu[a2], cu[b1], cu[b2]
		return (a1 == a2) == (b1 == b2) &&
			agree(t1.first, t2.first, q1.first, q2.first) &&
			agree(t1.first, t2.second, q1.first, q2.second) &&
			agree(t1.second, t2.first, q1.second, q2.first) &&
			agree(t1.second, t2.second, q1.second, q2.second) &&
			score[u] > 0 && score[v] > 0
	}

	start := time.Now()
	dbg.Printf("Mixed: %d vs. %d units", m, n)
	clique, stats, err := mwclique.Solve(ctx, mwclique.Problem{
		N: m * n, W: score, Edge: edge, MaxSize: min(m, n),
	})
	dbg.Printf("Mixed: %d eligible vertices, %d selected, %d iterations, %v",
		stats.Eligible, stats.Size, stats.Iterations, time.Since(start))
	if err != nil {
		return nil, err
	}
	var ret Matching
	for _, u := range clique {
		t, q := tu[u/n], cu[u%n]
		ret = append(ret, Pair{t.first, q.first})
		if t.kind != 0 {
			ret = append(ret, Pair{t.second, q.second})
		}
	}
	ret = ret.sorted()
	dbg.Printf("Mixed: matching %v", ret)
	return ret, nil
}

func unitLabels(s []sse.SSE, u []unit) []string {
	ret := make([]string, len(u))
	for i, x := range u {
		ret[i] = s[x.first].Label + "-" + s[x.second].Label
	}
	return ret
}
