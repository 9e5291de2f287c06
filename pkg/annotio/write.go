// 19 Mar 2024

package annotio

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

const nDigits = 3

// Result is an annotated structure, ready to be written.
type Result struct {
	Name           string
	Comment        string
	SSEs           []sse.SSE
	Metrics        []float64    // one per SSE, or nil
	Suspiciousness []float64    // one per SSE, or nil
	Edges          []dense.Edge // indices into SSEs
}

// round to nDigits after the point
func round(x float64) float64 {
	f := math.Pow10(nDigits)
	return math.Round(x*f) / f
}

// finite gives nil for NaN and infinities, which JSON cannot hold.
func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	r := round(x)
	return &r
}

func vec(v sse.Xyz) *[3]float64 {
	return &[3]float64{round(v.X), round(v.Y), round(v.Z)}
}

func toJS(s sse.SSE) jsSSE {
	x := jsSSE{
		Label: s.Label, Chain: s.Chain, Start: s.Start, End: s.End,
		Type: s.Type.String(), Comment: s.Comment,
	}
	if s.HasSheet {
		id := s.SheetID
		x.SheetID = &id
	}
	if s.StartVec != (sse.Xyz{}) || s.EndVec != (sse.Xyz{}) {
		x.StartVec, x.EndVec = vec(s.StartVec), vec(s.EndVec)
	}
	for _, n := range s.Nested {
		if n.Label != "" {
			x.Nested = append(x.Nested, toJS(n))
		}
	}
	return x
}

// Write puts r on w as a JSON object with one entry. SSEs which were
// not found are left out. Ladders are written with labels and ladders
// with an end out of range are dropped.
func Write(w io.Writer, r Result) error {
	js := jsEntry{Comment: r.Comment, SSEs: []jsSSE{}}
	found := 0
	for i, s := range r.SSEs {
		if s.IsNotFound() {
			continue
		}
		found++
		x := toJS(s)
		if r.Metrics != nil {
			x.Metric = finite(r.Metrics[i])
		}
		if r.Suspiciousness != nil {
			x.Suspiciousness = finite(r.Suspiciousness[i])
		}
		js.SSEs = append(js.SSEs, x)
	}
	js.Found = &found
	if r.Metrics != nil {
		var tot float64
		for _, m := range r.Metrics {
			if !math.IsNaN(m) && !math.IsInf(m, 0) {
				tot += m
			}
		}
		js.TotalMetric = finite(tot)
	}
	for _, e := range r.Edges {
		if e.A < 0 || e.A >= len(r.SSEs) || e.B < 0 || e.B >= len(r.SSEs) {
			continue
		}
		a, _ := json.Marshal(r.SSEs[e.A].Label)
		b, _ := json.Marshal(r.SSEs[e.B].Label)
		d, _ := json.Marshal(int(e.Type))
		js.Conn = append(js.Conn, []json.RawMessage{a, b, d})
	}

	out, err := json.MarshalIndent(map[string]jsEntry{r.Name: js}, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteFile creates or truncates fname.
func WriteFile(fname string, r Result) (err error) {
	fp, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		if e := fp.Close(); err == nil {
			err = e
		}
	}()
	w := bufio.NewWriter(fp)
	if err = Write(w, r); err != nil {
		return err
	}
	return w.Flush()
}
