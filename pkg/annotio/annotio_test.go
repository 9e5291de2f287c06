// 20 Mar 2024

package annotio_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andrew-torda/sse_annot/pkg/annot"
	. "github.com/andrew-torda/sse_annot/pkg/annotio"
	"github.com/andrew-torda/sse_annot/pkg/common"
	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

const tmplJSON = `{
  "1og2": {
    "comment": "cytochrome",
    "secondary_structure_elements": [
      {"label": "A", "chain_id": "A", "start": 2, "end": 10, "type": "H",
       "start_vector": [1, 2, 3], "end_vector": [4, 5, 6]},
      {"label": "1a", "chain_id": "A", "start": 20, "end": 25, "type": "E", "sheet_id": 1,
       "start_vector": [0, 0, 0], "end_vector": [5, 0, 0]},
      {"label": "1b", "chain_id": "A", "start": 30, "end": 35, "type": "E", "sheet_id": 1,
       "start_vector": [5, 4, 0], "end_vector": [0, 4, 0]}
    ],
    "beta_connectivity": [["1a", "1b", -1]],
    "sse_merging": [["1ab", "1a", "1b"], ["x", 1, 2]]
  },
  "other": {"secondary_structure_elements": []}
}`

func TestRead(t *testing.T) {
	fname, err := common.WrtTemp(tmplJSON)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(fname)
	e, err := ReadFile(fname, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "1og2" || e.Comment != "cytochrome" || len(e.SSEs) != 3 {
		t.Fatal("bad entry", e)
	}
	h := e.SSEs[0]
	if h.Type != sse.HelixH || h.Start != 2 || h.End != 10 || h.EndVec != (sse.Xyz{X: 4, Y: 5, Z: 6}) || h.HasSheet {
		t.Fatal("bad helix", h)
	}
	if s := e.SSEs[2]; !s.HasSheet || s.SheetID != 1 {
		t.Fatal("bad strand", s)
	}
	if diff := cmp.Diff([]dense.Edge{{A: 1, B: 2, Type: dense.Anti}}, e.Edges); diff != "" {
		t.Fatalf("(-want +got)\n%s", diff)
	}
	wantMerge := []annot.Alternative{{Label: "1ab", First: 1, Last: 2}, {Label: "x", First: 1, Last: 2}}
	if diff := cmp.Diff(wantMerge, e.Merging); diff != "" {
		t.Fatalf("(-want +got)\n%s", diff)
	}

	e, err = ReadFile(fname, "other", nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "other" || len(e.SSEs) != 0 {
		t.Fatal("bad second entry", e)
	}
	if _, err := ReadFile(fname, "missing", nil); !errors.Is(err, ErrFormat) {
		t.Fatal("missing entry should fail, got", err)
	}
}

func TestOnlyEntry(t *testing.T) {
	var buf bytes.Buffer
	e, err := Read([]byte(`{"abc": {"secondary_structure_elements": []}}`), "x.json", "xyz", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "abc" || !strings.Contains(buf.String(), "taking 'abc' instead") {
		t.Fatal("should take the only entry with a warning", e.Name, buf.String())
	}
}

func TestReadBad(t *testing.T) {
	for _, s := range []string{
		`[]`,
		`{}`,
		`{"a": {}}`,
		`{"a": {"secondary_structure_elements": [{"label": "x", "chain_id": "A", "start": 1, "end": 2, "type": "Q"}]}}`,
		`{"a": {"secondary_structure_elements": [], "beta_connectivity": [[0, 1, 1]]}}`,
		`{"a": {"secondary_structure_elements": [
			{"label": "x", "chain_id": "A", "start": 1, "end": 2, "type": "E"},
			{"label": "x", "chain_id": "A", "start": 5, "end": 7, "type": "E"}],
		  "beta_connectivity": [["x", "x", 1]]}}`,
		`{"a": {"secondary_structure_elements": [
			{"label": "x", "chain_id": "A", "start": 1, "end": 2, "type": "E"},
			{"label": "y", "chain_id": "A", "start": 5, "end": 7, "type": "E"}],
		  "beta_connectivity": [["x", "y", 2]]}}`,
		`{"a": {"secondary_structure_elements": [
			{"label": "x", "chain_id": "A", "start": 1, "end": 2, "type": "E"}],
		  "sse_merging": [["m", "x"]]}}`,
	} {
		if _, err := Read([]byte(s), "bad.json", "", nil); err == nil {
			t.Fatal("should fail:", s)
		}
	}
}

func TestWriteRead(t *testing.T) {
	joined := sse.New("E1", "A", 20, 35, sse.Strand, sse.Xyz{}, sse.Xyz{X: 1})
	joined.Nested = []sse.SSE{
		sse.New("q1", "A", 20, 25, sse.Strand, sse.Xyz{}, sse.Xyz{X: 0.5}),
		sse.New("q2", "A", 30, 35, sse.Strand, sse.Xyz{X: 0.6}, sse.Xyz{X: 1}),
	}
	r := Result{
		Name: "2abc",
		SSEs: []sse.SSE{
			sse.New("H1", "A", 2, 10, sse.HelixH, sse.Xyz{X: 1.23456}, sse.Xyz{Y: 2}),
			sse.NotFound("H2"),
			joined.WithSheet(3),
			sse.New("E2", "A", 40, 45, sse.Strand, sse.Xyz{Z: 1}, sse.Xyz{Z: 2}).WithSheet(3),
		},
		Metrics:        []float64{1.5, 0, 2.25, 1},
		Suspiciousness: []float64{0.25, math.NaN(), 0.5, 0},
		Edges:          []dense.Edge{{A: 2, B: 3, Type: dense.Parallel}, {A: 2, B: 9, Type: dense.Anti}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"found": 3`, `"total_metric_value": 4.75`, `"metric_value": 2.25`, `"nested_sses"`, `1.235`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in\n%s", want, out)
		}
	}
	if strings.Contains(out, `"H2"`) {
		t.Fatal("not found SSEs should not be written")
	}

	e, err := Read(buf.Bytes(), "out.json", "2abc", nil)
	if err != nil {
		t.Fatal(err)
	}
	labels := make([]string, len(e.SSEs))
	for i, s := range e.SSEs {
		labels[i] = s.Label
	}
	if diff := cmp.Diff([]string{"H1", "E1", "E2"}, labels); diff != "" {
		t.Fatalf("(-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]dense.Edge{{A: 1, B: 2, Type: dense.Parallel}}, e.Edges); diff != "" {
		t.Fatalf("ladders (-want +got)\n%s", diff)
	}
	if s := e.SSEs[1]; !s.HasSheet || s.SheetID != 3 || s.Start != 20 || s.End != 35 {
		t.Fatal("bad strand after round trip", s)
	}
}

func TestWriteFile(t *testing.T) {
	fname, err := common.WrtTemp("")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(fname)
	r := Result{Name: "x", SSEs: []sse.SSE{sse.NotFound("H1")}}
	if err := WriteFile(fname, r); err != nil {
		t.Fatal(err)
	}
	e, err := ReadFile(fname, "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(e.SSEs) != 0 {
		t.Fatal("wanted no SSEs, got", e.SSEs)
	}
}

const corrTSV = "# pdb\tlabel\tchain\tstart\tend\n" +
	"1abc\tA\tA\t5\t20\n" +
	"\n" +
	"2xyz\tA\tB\t1\t2\n" +
	"1abc\tB'\tA\t0\t0  # gone\n"

func TestCorrections(t *testing.T) {
	c, err := ReadCorrections(strings.NewReader(corrTSV), "1abc")
	if err != nil {
		t.Fatal(err)
	}
	want := []annot.Correction{
		{PDB: "1abc", Label: "A", Chain: "A", Start: 5, End: 20},
		{PDB: "1abc", Label: "B'", Chain: "A"},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("(-want +got)\n%s", diff)
	}
	if !c[1].NotFound() {
		t.Fatal("0 0 should mean not found")
	}
	for _, bad := range []string{"1abc\tA\tA\t5\n", "1abc\tA\tA\tx\t5\n"} {
		if _, err := ReadCorrections(strings.NewReader(bad), "1abc"); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
	fname, err := common.WrtTemp(corrTSV)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(fname)
	if c, err = ReadCorrectionsFile(fname, "2xyz"); err != nil || len(c) != 1 {
		t.Fatal("reading file", c, err)
	}
}
