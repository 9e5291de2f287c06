// 14 Mar 2024

package annot

import (
	"errors"
	"fmt"
	"sort"

	"github.com/andrew-torda/sse_annot/pkg/sse"
)

// Correction replaces the annotation of one template label. Start and
// End both zero mean the SSE should be reported as not found.
type Correction struct {
	PDB   string
	Label string
	Chain string
	Start int
	End   int
}

// NotFound is the "force not found" correction.
func (c Correction) NotFound() bool { return c.Start == 0 && c.End == 0 }

// Fitter builds an SSE in space for a residue range.
type Fitter interface {
	Fit(label, chain string, start, end int, typ sse.Type) (sse.SSE, error)
}

// ErrNoSegments is returned by SegmentFitter if it knows nothing about
// a chain.
var ErrNoSegments = errors.New("no segments to fit to")

// WithCorrections gives a wrapper which annotates in the same way, but
// overrides the labels listed in corrs. Geometry for the new ranges
// comes from fitter. The matching itself is not affected.
func (w *Wrapper) WithCorrections(corrs []Correction, fitter Fitter) *Wrapper {
	r := *w
	r.corrs = append([]Correction(nil), corrs...)
	r.fitter = fitter
	r.annotated = nil
	return &r
}

// applyCorrection works on the annotated list in place. The first
// template with the label wins.
func (w *Wrapper) applyCorrection(ann []sse.SSE, corr Correction) error {
	for i, t := range w.Context.Templates {
		if t.Label != corr.Label {
			continue
		}
		if corr.NotFound() {
			ann[i] = sse.NotFound(t.Label)
			return nil
		}
		if w.fitter == nil {
			return fmt.Errorf("correction for %s but nothing to fit it with", corr.Label)
		}
		s, err := w.fitter.Fit(t.Label, corr.Chain, corr.Start, corr.End, t.Type)
		if err != nil {
			return fmt.Errorf("correction for %s: %w", corr.Label, err)
		}
		if ann[i].HasSheet && s.IsSheet() {
			s = s.WithSheet(ann[i].SheetID)
		}
		ann[i] = s.WithComment("Corrected.")
		return nil
	}
	return nil
}

// SegmentFitter puts a residue range in space using SSEs we already
// have for the chain. A residue inside an SSE is placed along its
// segment, a residue between two SSEs on the line from the end of one
// to the start of the next. Beyond the ends we use the nearest end
// point.
type SegmentFitter struct {
	byChain map[string][]sse.SSE
}

// NewSegmentFitter usually gets the candidates.
func NewSegmentFitter(s []sse.SSE) *SegmentFitter {
	f := &SegmentFitter{byChain: make(map[string][]sse.SSE)}
	for _, x := range s {
		if !x.IsNotFound() {
			f.byChain[x.Chain] = append(f.byChain[x.Chain], x)
		}
	}
	for _, v := range f.byChain {
		sort.SliceStable(v, func(i, j int) bool { return sse.Compare(v[i], v[j]) < 0 })
	}
	return f
}

// Fit satisfies Fitter.
func (f *SegmentFitter) Fit(label, chain string, start, end int, typ sse.Type) (sse.SSE, error) {
	segs := f.byChain[chain]
	if len(segs) == 0 {
		return sse.SSE{}, fmt.Errorf("chain %s: %w", chain, ErrNoSegments)
	}
	if end < start {
		return sse.SSE{}, fmt.Errorf("%s: end %d before start %d", label, end, start)
	}
	return sse.New(label, chain, start, end, typ, place(segs, start), place(segs, end)), nil
}

// place finds a point for residue r.
func place(segs []sse.SSE, r int) sse.Xyz {
	frac := func(r, a, b int) float64 {
		if b == a {
			return 0
		}
		return float64(r-a) / float64(b-a)
	}
	if r <= segs[0].Start {
		return segs[0].StartVec
	}
	for k, s := range segs {
		if r <= s.End {
			if r >= s.Start {
				return sse.Lerp(s.StartVec, s.EndVec, frac(r, s.Start, s.End))
			}
			prev := segs[k-1] // k > 0 because r > segs[0].Start
			return sse.Lerp(prev.EndVec, s.StartVec, frac(r, prev.End, s.Start))
		}
	}
	return segs[len(segs)-1].EndVec
}
