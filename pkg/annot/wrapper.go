// 13 Mar 2024

package annot

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sheet"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

const (
	suspiciousThresh = 1.0
	suspiciousGap    = 5 // warn if joined parts are this far apart
)

// WrapOpts controls the post-processing.
type WrapOpts struct {
	CheckSheets  bool // warn if sheets do not correspond
	RenameSheets bool // give annotated strands the template sheet numbers
	AssignSheets bool // candidate strands without a sheet get one from the ladders
}

// DefaultWrapOpts checks and renames sheets.
var DefaultWrapOpts = WrapOpts{CheckSheets: true, RenameSheets: true}

// Wrapper puts a problem in order, runs an annotator on it and turns
// the answer back into the caller's numbering. Results are remembered,
// so asking twice gives the same answer. A Wrapper is not safe for
// concurrent use.
type Wrapper struct {
	Context      Context // as the caller gave it
	inner        Context // ordered
	tPerm, cPerm Perm
	annotator    Annotator
	opts         WrapOpts
	corrs        []Correction
	fitter       Fitter

	matching  Matching
	annotated []sse.SSE
}

// NewWrapper orders c and gets ready to run a on it.
func NewWrapper(c Context, a Annotator, opts WrapOpts) (*Wrapper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c = c.Copy()
	if opts.AssignSheets {
		if err := assignSheets(&c); err != nil {
			return nil, err
		}
	}
	inner, tPerm, cPerm, err := c.Ordered()
	if err != nil {
		return nil, err
	}
	w := &Wrapper{Context: c, inner: inner, tPerm: tPerm, cPerm: cPerm, annotator: a, opts: opts}
	dbg := c.Log.Debug
	dbg.Printf("Template mapping: %v", []int(tPerm))
	dbg.Printf("Candidate mapping: %v", []int(cPerm))
	return w, nil
}

// assignSheets numbers candidate sheets from the ladders, but only
// if no candidate strand has a sheet yet.
func assignSheets(c *Context) error {
	if !c.CConn.Present() {
		return nil
	}
	for _, q := range c.Candidates {
		if q.IsSheet() && q.HasSheet {
			return nil
		}
	}
	ids, err := sheet.IDs(c.CConn, func(i int) bool { return c.Candidates[i].IsSheet() })
	if err != nil {
		return err
	}
	for i, q := range c.Candidates {
		if q.IsSheet() {
			c.Candidates[i] = q.WithSheet(ids[i])
		}
	}
	return nil
}

// Matching runs the annotator the first time and maps the answer back
// to the caller's indices.
func (w *Wrapper) Matching(ctx context.Context) (Matching, error) {
	if w.matching != nil {
		return w.matching, nil
	}
	m, err := w.annotator(ctx, w.inner)
	if err != nil {
		return nil, err
	}
	w.matching = mapBack(m, w.tPerm, w.cPerm)
	if w.matching == nil {
		w.matching = Matching{}
	}
	w.Context.Log.Debug.Printf("Matching: %v", w.labelPairs(w.matching))
	return w.matching, nil
}

func (w *Wrapper) labelPairs(m Matching) string {
	s := ""
	for i, p := range m {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("(%s,%s)", w.Context.Templates[p.T].Label, w.Context.Candidates[p.C].Label)
	}
	return s
}

// Annotated has one SSE per template, with the template's label. If a
// template was not found, it gets a placeholder. If a template was
// matched to several candidates, they are joined.
func (w *Wrapper) Annotated(ctx context.Context) ([]sse.SSE, error) {
	if w.annotated != nil {
		return w.annotated, nil
	}
	m, err := w.Matching(ctx)
	if err != nil {
		return nil, err
	}
	c := w.Context
	ret := make([]sse.SSE, len(c.Templates))
	for i, t := range c.Templates {
		ret[i] = sse.NotFound(t.Label)
	}
	if m.Injective() {
		for _, p := range m {
			ret[p.T] = c.Candidates[p.C].Relabeled(c.Templates[p.T].Label)
		}
	} else {
		byT := make(map[int][]int)
		for _, p := range m.sorted() {
			byT[p.T] = append(byT[p.T], p.C)
		}
		for i, cands := range byT {
			if ret[i], err = w.merge(i, cands); err != nil {
				return nil, err
			}
		}
	}

	if w.opts.CheckSheets || w.opts.RenameSheets {
		rename := w.checkSheets(m)
		if w.opts.RenameSheets && rename != nil {
			for i, x := range ret {
				if t, ok := rename[x.SheetID]; ok && x.HasSheet {
					ret[i] = x.WithSheet(t)
				}
			}
		}
	}
	for _, corr := range w.corrs {
		if err := w.applyCorrection(ret, corr); err != nil {
			return nil, err
		}
	}
	w.annotated = ret
	return ret, nil
}

// merge joins all candidates given to template i.
func (w *Wrapper) merge(i int, cands []int) (sse.SSE, error) {
	c := w.Context
	label := c.Templates[i].Label
	all := make([]sse.SSE, len(cands))
	for k, j := range cands {
		all[k] = c.Candidates[j]
	}
	sort.SliceStable(all, func(a, b int) bool { return sse.Compare(all[a], all[b]) < 0 })
	if len(all) == 1 {
		return all[0].Relabeled(label), nil
	}
	for k := 0; k+1 < len(all); k++ {
		if all[k+1].Chain != all[k].Chain {
			return sse.SSE{}, fmt.Errorf("strands from different chains annotated as parts of %s: %w", label, sse.ErrCrossChain)
		}
		if gap := all[k+1].Start - all[k].End - 1; gap >= suspiciousGap {
			c.Log.warnf("Suspicious joining in %s. Gap between joined SSEs = %d", label, gap)
		}
	}
	j, warn, err := sse.Join(all...)
	if err != nil {
		return sse.SSE{}, err
	}
	if warn != "" {
		c.Log.warnf("%s", warn)
	}
	return j.Relabeled(label), nil
}

// checkSheets compares sheet IDs of matched strands. It returns the
// mapping from candidate sheet to template sheet, or nil if the check
// could not be done or failed.
func (w *Wrapper) checkSheets(m Matching) map[int]int {
	c := w.Context
	for _, s := range [][]sse.SSE{c.Templates, c.Candidates} {
		for _, x := range s {
			if x.IsSheet() && !x.HasSheet {
				c.Log.warnf("Cannot check sheet ID consistency because some strands do not have sheet ID.")
				return nil
			}
		}
	}
	var pairs []sheet.Pair
	for _, p := range m {
		t, q := c.Templates[p.T], c.Candidates[p.C]
		if t.IsSheet() && q.IsSheet() {
			pairs = append(pairs, sheet.Pair{Template: t.SheetID, Candidate: q.SheetID})
		}
	}
	rename, problems := sheet.Match(pairs)
	if problems != nil {
		c.Log.warnf("Some beta-strands caused a sheet ID mismatch!")
		for _, s := range problems {
			c.Log.warnf("%s", s)
		}
	}
	return rename
}

// AnnotatedConnectivity takes ladders between candidates and renumbers
// them to the annotated SSEs. Ladders with an end which was not matched
// are dropped.
func (w *Wrapper) AnnotatedConnectivity(ctx context.Context, edges []dense.Edge) ([]dense.Edge, error) {
	m, err := w.Matching(ctx)
	if err != nil {
		return nil, err
	}
	toT := make(map[int]int, len(m))
	for _, p := range m {
		toT[p.C] = p.T
	}
	var ret []dense.Edge
	for _, e := range edges {
		a, okA := toT[e.A]
		b, okB := toT[e.B]
		if okA && okB {
			ret = append(ret, dense.Edge{A: a, B: b, Type: e.Type})
		}
	}
	return ret, nil
}

// Metrics gives the metric between each template and its annotated
// SSE, or 0 if it was not found.
func (w *Wrapper) Metrics(ctx context.Context) ([]float64, error) {
	ann, err := w.Annotated(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]float64, len(ann))
	for i, q := range ann {
		if !q.IsNotFound() {
			ret[i] = w.Context.Metric(w.Context.Templates[i], q)
		}
	}
	return ret, nil
}

// Suspiciousness is, for each matched template, the metric of its
// match divided by itself plus the best alternative. The alternative
// is the smallest metric to another type-compatible candidate, or from
// another type-compatible template to the same candidate. Values near
// 0.5 or above mean the choice was not clear. Templates which were not
// found get NaN, since there is nothing to compare.
func (w *Wrapper) Suspiciousness(ctx context.Context) ([]float64, error) {
	m, err := w.Matching(ctx)
	if err != nil {
		return nil, err
	}
	c := w.Context
	ret := make([]float64, len(c.Templates))
	for i := range ret {
		ret[i] = math.NaN()
	}
	for _, p := range m {
		t, q := c.Templates[p.T], c.Candidates[p.C]
		other := math.Inf(1)
		for j, x := range c.Candidates {
			if j != p.C && c.TypeMatch(t.Type, x.Type) {
				other = math.Min(other, c.Metric(t, x))
			}
		}
		for i, x := range c.Templates {
			if i != p.T && c.TypeMatch(x.Type, q.Type) {
				other = math.Min(other, c.Metric(x, q))
			}
		}
		annot := c.Metric(t, q)
		s := annot / (annot + other)
		ret[p.T] = s
		if s >= suspiciousThresh {
			c.Log.warnf("Possibly ambiguous annotation around %q (annotated / (alternative+annotated) = %.2f).", t.Label, s)
		}
	}
	return ret, nil
}
