// 15 Mar 2024

package annot_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/andrew-torda/sse_annot/pkg/annot"
	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

// fixed is an annotator which always says the same thing.
func fixed(m Matching) Annotator {
	return func(context.Context, Context) (Matching, error) { return m, nil }
}

func labelPairs(c Context, m Matching) [][2]string {
	var ret [][2]string
	for _, p := range m {
		ret = append(ret, [2]string{c.Templates[p.T].Label, c.Candidates[p.C].Label})
	}
	return ret
}

func TestNotFound(t *testing.T) {
	tmpl := []sse.SSE{mk("E1", sse.Strand, 1, 5, 0)}
	cand := []sse.SSE{mk("c0", sse.HelixH, 1, 5, 0)}
	c := newCtx(t, tmpl, cand, nil, nil)
	c.SkipTemplate = func(sse.SSE) float64 { return 1e6 }
	w, err := NewWrapper(c, DynProg, DefaultWrapOpts)
	if err != nil {
		t.Fatal(err)
	}
	ann, err := w.Annotated(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ann) != 1 || !ann[0].IsNotFound() || ann[0].Label != "E1" {
		t.Fatal("want placeholder for E1, got", ann)
	}
	susp, err := w.Suspiciousness(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(susp[0]) {
		t.Fatal("unmatched template should have NaN suspiciousness, got", susp[0])
	}
	met, err := w.Metrics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if met[0] != 0 {
		t.Fatal("unmatched template should have metric 0, got", met[0])
	}
}

func TestMatchingIsRemembered(t *testing.T) {
	calls := 0
	var a Annotator = func(ctx context.Context, c Context) (Matching, error) {
		calls++
		return DynProg(ctx, c)
	}
	tmpl := []sse.SSE{mk("H1", sse.HelixH, 1, 5, 0), mk("E1", sse.Strand, 10, 14, 0)}
	w, err := NewWrapper(newCtx(t, tmpl, tmpl, nil, nil), a, DefaultWrapOpts)
	if err != nil {
		t.Fatal(err)
	}
	m1, err := w.Matching(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	m2, err := w.Matching(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m1, m2); diff != "" || calls != 1 {
		t.Fatalf("calls %d, (-first +second)\n%s", calls, diff)
	}
}

// Shuffling the input and letting the wrapper sort it must give the
// same label pairs as working on the sorted input.
func TestReorderRoundTrip(t *testing.T) {
	strats := allStrategies()
	strats["mom soft"] = func(ctx context.Context, c Context) (Matching, error) {
		return Mixed(ctx, c, true)
	}
	rng := rand.New(rand.NewSource(4))
	for trial := 0; trial < 50; trial++ {
		c := randProblem(t, rng)
		tPerm := Perm(rng.Perm(len(c.Templates)))
		cPerm := Perm(rng.Perm(len(c.Candidates)))
		shuffled, err := c.ApplyPerms(tPerm, cPerm)
		if err != nil {
			t.Fatal(err)
		}
		for name, f := range strats {
			direct, err := f(context.Background(), c)
			if err != nil {
				t.Fatal(name, err)
			}
			w, err := NewWrapper(shuffled, f, WrapOpts{})
			if err != nil {
				t.Fatal(name, err)
			}
			m, err := w.Matching(context.Background())
			if err != nil {
				t.Fatal(name, err)
			}
			if diff := cmp.Diff(labelPairs(c, direct), labelPairs(shuffled, m)); diff != "" {
				t.Fatalf("%s trial %d (-direct +shuffled)\n%s", name, trial, diff)
			}
		}
	}
}

func TestJoinParts(t *testing.T) {
	tmpl := []sse.SSE{mk("E1", sse.Strand, 1, 20, 0)}
	cand := []sse.SSE{mk("c1", sse.Strand, 12, 20, 0), mk("c0", sse.Strand, 1, 5, 0)}
	c := newCtx(t, tmpl, cand, nil, nil)
	var buf bytes.Buffer
	c.Log.Warn = &buf
	w, err := NewWrapper(c, fixed(Matching{{0, 0}, {0, 1}}), WrapOpts{})
	if err != nil {
		t.Fatal(err)
	}
	ann, err := w.Annotated(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	j := ann[0]
	if j.Label != "E1" || j.Start != 1 || j.End != 20 || len(j.Nested) != 2 {
		t.Fatal("bad join", j)
	}
	if !strings.Contains(buf.String(), "Suspicious joining in E1. Gap between joined SSEs = 6") {
		t.Fatal("missing warning, got", buf.String())
	}
}

func TestJoinAcrossChains(t *testing.T) {
	tmpl := []sse.SSE{mk("E1", sse.Strand, 1, 20, 0)}
	other := mk("c1", sse.Strand, 7, 10, 0)
	other.Chain = "B"
	cand := []sse.SSE{mk("c0", sse.Strand, 1, 5, 0), other}
	w, err := NewWrapper(newCtx(t, tmpl, cand, nil, nil), fixed(Matching{{0, 0}, {0, 1}}), WrapOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Annotated(context.Background()); !errors.Is(err, sse.ErrCrossChain) {
		t.Fatal("wanted ErrCrossChain, got", err)
	}
}

func TestSheetRename(t *testing.T) {
	tmpl := []sse.SSE{
		mk("E1", sse.Strand, 1, 5, 0).WithSheet(1),
		mk("E2", sse.Strand, 10, 14, 5).WithSheet(1),
	}
	cand := []sse.SSE{
		mk("c0", sse.Strand, 1, 5, 0).WithSheet(7),
		mk("c1", sse.Strand, 10, 14, 5).WithSheet(7),
	}
	edges := []dense.Edge{{A: 0, B: 1, Type: dense.Anti}}
	w, err := NewWrapper(newCtx(t, tmpl, cand, edges, edges), BranchAndBound, DefaultWrapOpts)
	if err != nil {
		t.Fatal(err)
	}
	ann, err := w.Annotated(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range ann {
		if !a.HasSheet || a.SheetID != 1 {
			t.Fatal("sheet not renamed", a)
		}
	}
	conn, err := w.AnnotatedConnectivity(context.Background(), edges)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(edges, conn); diff != "" {
		t.Fatalf("(-want +got)\n%s", diff)
	}
}

func TestSheetMismatch(t *testing.T) {
	tmpl := []sse.SSE{
		mk("E1", sse.Strand, 1, 5, 0).WithSheet(1),
		mk("E2", sse.Strand, 10, 14, 5).WithSheet(1),
	}
	cand := []sse.SSE{
		mk("c0", sse.Strand, 1, 5, 0).WithSheet(3),
		mk("c1", sse.Strand, 10, 14, 5).WithSheet(4),
	}
	c := newCtx(t, tmpl, cand, nil, nil)
	var buf bytes.Buffer
	c.Log.Warn = &buf
	w, err := NewWrapper(c, DynProg, DefaultWrapOpts)
	if err != nil {
		t.Fatal(err)
	}
	ann, err := w.Annotated(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ann[0].SheetID != 3 || ann[1].SheetID != 4 {
		t.Fatal("sheets should be left alone", ann)
	}
	if !strings.Contains(buf.String(), "sheet ID mismatch") {
		t.Fatal("missing warning, got", buf.String())
	}
}

func TestAssignSheets(t *testing.T) {
	tmpl := []sse.SSE{
		mk("E1", sse.Strand, 1, 5, 0).WithSheet(2),
		mk("E2", sse.Strand, 10, 14, 5).WithSheet(2),
	}
	cand := []sse.SSE{mk("c0", sse.Strand, 1, 5, 0), mk("c1", sse.Strand, 10, 14, 5)}
	edges := []dense.Edge{{A: 0, B: 1, Type: dense.Anti}}
	opts := DefaultWrapOpts
	opts.AssignSheets = true
	w, err := NewWrapper(newCtx(t, tmpl, cand, edges, edges), DynProg, opts)
	if err != nil {
		t.Fatal(err)
	}
	ann, err := w.Annotated(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range ann {
		if !a.HasSheet || a.SheetID != 2 {
			t.Fatal("wanted sheet 2, got", a)
		}
	}
}

func TestDroppedConnectivity(t *testing.T) {
	tmpl := []sse.SSE{mk("E1", sse.Strand, 1, 5, 0)}
	cand := []sse.SSE{mk("c0", sse.Strand, 1, 5, 0), mk("c1", sse.Strand, 10, 14, 5)}
	w, err := NewWrapper(newCtx(t, tmpl, cand, nil, nil), fixed(Matching{{0, 0}}), WrapOpts{})
	if err != nil {
		t.Fatal(err)
	}
	conn, err := w.AnnotatedConnectivity(context.Background(), []dense.Edge{{A: 0, B: 1, Type: dense.Parallel}})
	if err != nil {
		t.Fatal(err)
	}
	if len(conn) != 0 {
		t.Fatal("ladder to an unmatched candidate should go, got", conn)
	}
}

func TestSuspicious(t *testing.T) {
	tmpl := []sse.SSE{mk("H1", sse.HelixH, 1, 5, 0)}
	cand := []sse.SSE{
		sse.New("c0", "A", 1, 5, sse.HelixH, sse.Xyz{X: 2}, sse.Xyz{X: 6}),
		mk("c1", sse.HelixH, 10, 14, 0),
	}
	cand[1].StartVec, cand[1].EndVec = tmpl[0].StartVec, tmpl[0].EndVec
	for _, tst := range []struct {
		m         Matching
		want, met float64
		warn      bool
	}{
		{Matching{{0, 0}}, 1, 2, true},  // c1 would have been perfect
		{Matching{{0, 1}}, 0, 0, false}, // perfect
	} {
		c := newCtx(t, tmpl, cand, nil, nil)
		var buf bytes.Buffer
		c.Log.Warn = &buf
		w, err := NewWrapper(c, fixed(tst.m), WrapOpts{})
		if err != nil {
			t.Fatal(err)
		}
		susp, err := w.Suspiciousness(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(susp[0]-tst.want) > 1e-9 {
			t.Fatal("wanted", tst.want, "got", susp[0])
		}
		if got := strings.Contains(buf.String(), "Possibly ambiguous"); got != tst.warn {
			t.Fatalf("warning %v, wanted %v: %q", got, tst.warn, buf.String())
		}
		met, err := w.Metrics(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(met[0]-tst.met) > 1e-9 {
			t.Fatal("metric wanted", tst.met, "got", met[0])
		}
	}
}

func TestCorrections(t *testing.T) {
	tmpl := []sse.SSE{mk("H1", sse.HelixH, 1, 5, 0), mk("H2", sse.HelixH, 11, 15, 0)}
	c := newCtx(t, tmpl, tmpl, nil, nil)
	w, err := NewWrapper(c, DynProg, WrapOpts{})
	if err != nil {
		t.Fatal(err)
	}
	wc := w.WithCorrections([]Correction{
		{Label: "H1"},
		{Label: "H2", Chain: "A", Start: 3, End: 8},
	}, NewSegmentFitter(c.Candidates))
	ann, err := wc.Annotated(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !ann[0].IsNotFound() {
		t.Fatal("H1 should be forced to not found", ann[0])
	}
	h2 := ann[1]
	if h2.Label != "H2" || h2.Start != 3 || h2.End != 8 || h2.Type != sse.HelixH {
		t.Fatal("bad correction", h2)
	}
	if h2.StartVec != (sse.Xyz{X: 3}) || h2.EndVec != (sse.Xyz{X: 8}) {
		t.Fatal("bad geometry", h2.StartVec, h2.EndVec)
	}
	plain, err := w.Annotated(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if plain[0].IsNotFound() {
		t.Fatal("corrections leaked into the original wrapper")
	}
}

func TestSegmentFitter(t *testing.T) {
	f := NewSegmentFitter([]sse.SSE{
		sse.New("b", "A", 11, 15, sse.Strand, sse.Xyz{X: 10}, sse.Xyz{X: 14}),
		sse.New("a", "A", 1, 5, sse.Strand, sse.Xyz{X: 0}, sse.Xyz{X: 4}),
	})
	for _, tst := range []struct {
		start, end int
		x0, x1     float64
	}{
		{3, 8, 2, 7},    // inside, then in the gap
		{-4, 40, 0, 14}, // beyond both ends
		{11, 15, 10, 14},
	} {
		s, err := f.Fit("x", "A", tst.start, tst.end, sse.Strand)
		if err != nil {
			t.Fatal(err)
		}
		if s.StartVec.X != tst.x0 || s.EndVec.X != tst.x1 {
			t.Fatalf("%d-%d: got %v %v", tst.start, tst.end, s.StartVec, s.EndVec)
		}
	}
	if _, err := f.Fit("x", "Z", 1, 2, sse.Strand); !errors.Is(err, ErrNoSegments) {
		t.Fatal("wanted ErrNoSegments, got", err)
	}
	if _, err := f.Fit("x", "A", 5, 2, sse.Strand); err == nil {
		t.Fatal("backwards range should fail")
	}
}
