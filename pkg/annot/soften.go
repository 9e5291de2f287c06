// 9 Mar 2024
// Soft matching. A strand in one structure is sometimes broken into
// two or more pieces in the other. We add extra vertices, each standing
// for a run of neighbouring strands joined together, and let the
// matching choose between the pieces and the joined version.

package annot

import (
	"fmt"
	"strings"

	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

type side byte

const (
	templateSide side = iota
	candidateSide
)

// Alternative is a run of templates, first to last inclusive, which
// should also be offered as one joined template with a new label.
type Alternative struct {
	Label       string
	First, Last int
}

// Softened adds a joined candidate for every pair of neighbouring
// strands in the same chain with a gap of at most maxGap residues and
// no ladder between them. A joined candidate may not be matched to a
// template with fewer parallel or antiparallel ladders than it has
// itself. The result is ordered.
func (c Context) Softened(maxGap int) (Context, error) {
	if err := c.ValidateOrdering(); err != nil {
		return Context{}, err
	}
	if err := c.ValidateBetaGraph(); err != nil {
		return Context{}, err
	}
	var ranges [][2]int
	for i := 0; i+1 < len(c.Candidates); i++ {
		s1, s2 := c.Candidates[i], c.Candidates[i+1]
		if joinable(s1, s2, maxGap) && c.CConn.At(i, i+1) == dense.NoLadder {
			ranges = append(ranges, [2]int{i, i + 1})
		}
	}
	r, err := c.joinRanges(ranges, candidateSide, c.joinPlus, true)
	if err != nil {
		return Context{}, err
	}
	r, _, _, err = r.Ordered()
	return r, err
}

// SoftenedMulti adds a joined candidate for every run of two or more
// neighbouring strands in one chain where the last strand starts within
// maxGap residues of the end of the first and has no ladder to any
// earlier strand in the run. The result is ordered.
func (c Context) SoftenedMulti(maxGap int) (Context, error) {
	if err := c.ValidateOrdering(); err != nil {
		return Context{}, err
	}
	if err := c.ValidateBetaGraph(); err != nil {
		return Context{}, err
	}
	var ranges [][2]int
	n := len(c.Candidates)
	for i := 0; i < n-1; i++ {
	run:
		for j := i + 1; j < n; j++ {
			if !joinable(c.Candidates[i], c.Candidates[j], maxGap) {
				break
			}
			for x := i; x < j; x++ {
				if c.CConn.At(x, j) != dense.NoLadder {
					break run
				}
			}
			ranges = append(ranges, [2]int{i, j})
		}
	}
	r, err := c.joinRanges(ranges, candidateSide, c.joinUnderscore, false)
	if err != nil {
		return Context{}, err
	}
	r, _, _, err = r.Ordered()
	return r, err
}

// WithAlternativeTemplates adds joined templates chosen by the caller.
// The result is ordered.
func (c Context) WithAlternativeTemplates(alts []Alternative) (Context, error) {
	if err := c.ValidateBetaGraph(); err != nil {
		return Context{}, err
	}
	ranges := make([][2]int, len(alts))
	for i, a := range alts {
		ranges[i] = [2]int{a.First, a.Last}
	}
	mOrig := len(c.Templates)
	r, err := c.joinRanges(ranges, templateSide, c.joinUnderscore, false)
	if err != nil {
		return Context{}, err
	}
	for i, a := range alts {
		r.Templates[mOrig+i] = r.Templates[mOrig+i].Relabeled(a.Label)
	}
	r, _, _, err = r.Ordered()
	return r, err
}

// joinable checks two strands in order in the same chain.
func joinable(s1, s2 sse.SSE, maxGap int) bool {
	return s1.Chain == s2.Chain && s1.IsSheet() && s2.IsSheet() && s2.Start-s1.End-1 <= maxGap
}

// joinPlus is sse.Join, with the sheet warning passed on.
func (c Context) joinPlus(parts []sse.SSE) (sse.SSE, error) {
	j, warn, err := sse.Join(parts...)
	if warn != "" {
		c.Log.warnf("%s", warn)
	}
	return j, err
}

// joinUnderscore makes a strand from parts which are in order. The
// label has the parts separated by underscores.
func (c Context) joinUnderscore(parts []sse.SSE) (sse.SSE, error) {
	j, err := c.joinPlus(parts)
	if err != nil {
		return j, err
	}
	l := make([]string, len(parts))
	for i, p := range parts {
		l[i] = p.Label
	}
	j = j.Relabeled(strings.Join(l, "_"))
	j.Type = sse.Strand
	j.Start, j.End = parts[0].Start, parts[len(parts)-1].End
	j.StartVec, j.EndVec = parts[0].StartVec, parts[len(parts)-1].EndVec
	return j, nil
}

// joinRanges adds one vertex per range on side s. Nothing is reordered.
// The new vertex
//   - has a ladder to anything one of its parts has a ladder to,
//   - excludes its parts and any other new vertex with overlapping range,
//   - may be matched wherever one of its parts may be.
//
// strict stops a new vertex being matched to anything with fewer
// ladders of either direction.
func (c Context) joinRanges(ranges [][2]int, s side, join func([]sse.SSE) (sse.SSE, error), strict bool) (Context, error) {
	var hSSEs []sse.SSE
	var gh dense.Mask // other side x this side
	var gConn, hConn dense.Conn
	var hExcl dense.Mask
	m := len(c.Templates)
	if s == candidateSide {
		hSSEs, gh = c.Candidates, c.Guide
		gConn, hConn, hExcl = c.TConn, c.CConn, c.CExcl
	} else {
		hSSEs, gh = c.Templates, c.Guide.Transposed()
		gConn, hConn, hExcl = c.CConn, c.TConn, c.TExcl
		m = len(c.Candidates)
	}
	nOrig := len(hSSEs)
	nNew := nOrig + len(ranges)
	for _, r := range ranges {
		if r[0] < 0 || r[1] >= nOrig || r[0] >= r[1] {
			return Context{}, fmt.Errorf("cannot join SSEs %d to %d out of %d: %w", r[0], r[1], nOrig, ErrDims)
		}
	}

	newSSEs := append(append([]sse.SSE(nil), hSSEs...), make([]sse.SSE, len(ranges))...)
	if gh.Present() {
		gh = gh.Resized(m, nNew)
	} else {
		gh = dense.FullMask(m, nNew)
	}
	conn := hConn.Resized(nNew)
	if hExcl.Present() {
		hExcl = hExcl.Resized(nNew, nNew)
	} else {
		hExcl = dense.NewMask(nNew, nNew)
	}
	setConn := func(a, b int, par, anti bool) error {
		if par && anti {
			return fmt.Errorf("%s and %s: %w", newSSEs[a].Label, newSSEs[b].Label, ErrMixedLadder)
		}
		if par {
			conn.Set(a, b, dense.Parallel)
			conn.Set(b, a, dense.Parallel)
		} else if anti {
			conn.Set(a, b, dense.Anti)
			conn.Set(b, a, dense.Anti)
		}
		return nil
	}

	for k, r := range ranges {
		idx := nOrig + k
		j, err := join(hSSEs[r[0] : r[1]+1])
		if err != nil {
			return Context{}, err
		}
		newSSEs[idx] = j
		for t := 0; t < m; t++ {
			ok := false
			for p := r[0]; p <= r[1]; p++ {
				ok = ok || gh.At(t, p)
			}
			gh.Set(t, idx, ok)
		}
		for q := 0; q < nOrig; q++ {
			par, anti := false, false
			for p := r[0]; p <= r[1]; p++ {
				par = par || hConn.At(q, p) == dense.Parallel
				anti = anti || hConn.At(q, p) == dense.Anti
			}
			if err := setConn(idx, q, par, anti); err != nil {
				return Context{}, err
			}
		}
		for p := r[0]; p <= r[1]; p++ {
			hExcl.Set(p, idx, true)
			hExcl.Set(idx, p, true)
		}
	}

	for k, rk := range ranges {
		for l := k + 1; l < len(ranges); l++ {
			rl := ranges[l]
			par, anti := false, false
			for kp := rk[0]; kp <= rk[1]; kp++ {
				for lp := rl[0]; lp <= rl[1]; lp++ {
					par = par || hConn.At(kp, lp) == dense.Parallel
					anti = anti || hConn.At(kp, lp) == dense.Anti
				}
			}
			if err := setConn(nOrig+k, nOrig+l, par, anti); err != nil {
				return Context{}, err
			}
			if rk[1] >= rl[0] && rl[1] >= rk[0] {
				hExcl.Set(nOrig+k, nOrig+l, true)
				hExcl.Set(nOrig+l, nOrig+k, true)
			}
		}
	}

	if strict {
		for k := range ranges {
			idx := nOrig + k
			jPar, jAnti := 0, 0
			for q := 0; q < nOrig; q++ {
				switch conn.At(idx, q) {
				case dense.Parallel:
					jPar++
				case dense.Anti:
					jAnti++
				}
			}
			for t := 0; t < m; t++ {
				if jPar > gConn.Degree(t, dense.Parallel) || jAnti > gConn.Degree(t, dense.Anti) {
					gh.Set(t, idx, false)
				}
			}
		}
	}

	r := c
	if s == candidateSide {
		r.Candidates, r.Guide, r.CConn, r.CExcl = newSSEs, gh, conn, hExcl
	} else {
		r.Templates, r.Guide, r.TConn, r.TExcl = newSSEs, gh.Transposed(), conn, hExcl
	}
	return r, nil
}
