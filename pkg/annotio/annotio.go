// 18 Mar 2024

// Package annotio reads and writes annotation files. An annotation
// file is a JSON object. Each key is the name of a protein and each
// value has its SSEs, the ladders between strands and, for templates,
// runs of SSEs which may be joined.
package annotio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/andrew-torda/sse_annot/pkg/annot"
	"github.com/andrew-torda/sse_annot/pkg/common"
	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

// Keys in the JSON files
const (
	keySSEs    = "secondary_structure_elements"
	keyConn    = "beta_connectivity"
	keyMerging = "sse_merging"
)

var ErrFormat = errors.New("annotation file format")

// Entry is one protein from an annotation file.
type Entry struct {
	Name    string
	Comment string
	SSEs    []sse.SSE
	Edges   []dense.Edge        // ladders, indices into SSEs
	Merging []annot.Alternative // runs of SSEs which may be joined
}

type jsSSE struct {
	Label          string      `json:"label"`
	Chain          string      `json:"chain_id"`
	Start          int         `json:"start"`
	End            int         `json:"end"`
	Type           string      `json:"type"`
	SheetID        *int        `json:"sheet_id,omitempty"`
	StartVec       *[3]float64 `json:"start_vector,omitempty"`
	EndVec         *[3]float64 `json:"end_vector,omitempty"`
	Comment        string      `json:"comment,omitempty"`
	Metric         *float64    `json:"metric_value,omitempty"`
	Suspiciousness *float64    `json:"suspiciousness,omitempty"`
	Nested         []jsSSE     `json:"nested_sses,omitempty"`
}

type jsEntry struct {
	Comment     string              `json:"comment,omitempty"`
	Found       *int                `json:"found,omitempty"`
	TotalMetric *float64            `json:"total_metric_value,omitempty"`
	SSEs        []jsSSE             `json:"secondary_structure_elements"`
	Conn        [][]json.RawMessage `json:"beta_connectivity,omitempty"`
	Merging     [][]json.RawMessage `json:"sse_merging,omitempty"`
}

// ReadFile maps fname into memory and reads the entry called name. If
// name is empty, we take the first entry. If there is only one entry
// and it has the wrong name, we take it, but complain to warn.
func ReadFile(fname, name string, warn io.Writer) (Entry, error) {
	var fp *os.File
	var err error
	var mm mmap.MMap
	if fp, err = os.Open(fname); err != nil {
		return Entry{}, err
	}
	defer fp.Close()
	if fi, err := fp.Stat(); err != nil {
		return Entry{}, err
	} else if fi.Size() == 0 {
		return Entry{}, fmt.Errorf("%s is empty: %w", fname, ErrFormat)
	}
	if mm, err = mmap.Map(fp, mmap.RDONLY, 0); err != nil {
		return Entry{}, err
	}
	defer mm.Unmap()
	return Read(mm, fname, name, warn)
}

// Read does the work for ReadFile. fname is only used in messages.
func Read(data []byte, fname, name string, warn io.Writer) (Entry, error) {
	keys, err := topKeys(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", fname, err)
	}
	if len(keys) == 0 {
		return Entry{}, fmt.Errorf("%s is an empty JSON object: %w", fname, ErrFormat)
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", fname, err)
	}
	if name == "" {
		name = keys[0]
	}
	if _, ok := all[name]; !ok {
		if len(keys) != 1 {
			return Entry{}, fmt.Errorf("%s does not contain %s: %w", fname, name, ErrFormat)
		}
		common.Warnf(warn, false, "%s does not contain entry '%s', taking '%s' instead.", fname, name, keys[0])
		name = keys[0]
	}
	loc := fmt.Sprintf("%s[%q]", fname, name)
	var js jsEntry
	if err := json.Unmarshal(all[name], &js); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", loc, err)
	}
	if js.SSEs == nil {
		return Entry{}, fmt.Errorf("%s does not contain key %q: %w", loc, keySSEs, ErrFormat)
	}
	e := Entry{Name: name, Comment: js.Comment}
	for i, x := range js.SSEs {
		s, err := fromJS(x)
		if err != nil {
			return Entry{}, fmt.Errorf("%s[%q][%d]: %w", loc, keySSEs, i, err)
		}
		e.SSEs = append(e.SSEs, s)
	}

	idx := newLabelIndex(e.SSEs)
	for i, c := range js.Conn {
		a, b, typ, err := connEntry(c, idx)
		if err != nil {
			return Entry{}, fmt.Errorf("%s[%q][%d]: %w", loc, keyConn, i, err)
		}
		e.Edges = append(e.Edges, dense.Edge{A: a, B: b, Type: typ})
	}
	for i, m := range js.Merging {
		alt, err := mergeEntry(m, idx)
		if err != nil {
			return Entry{}, fmt.Errorf("%s[%q][%d]: %w", loc, keyMerging, i, err)
		}
		e.Merging = append(e.Merging, alt)
	}
	return e, nil
}

// topKeys gives the keys of the outer object in file order.
func topKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return nil, err
	} else if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("not a JSON object: %w", ErrFormat)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func fromJS(x jsSSE) (sse.SSE, error) {
	typ, ok := sse.ParseType(x.Type)
	if !ok {
		return sse.SSE{}, fmt.Errorf("unknown SSE type %q: %w", x.Type, ErrFormat)
	}
	var v0, v1 sse.Xyz
	if x.StartVec != nil && x.EndVec != nil {
		v0 = sse.Xyz{X: x.StartVec[0], Y: x.StartVec[1], Z: x.StartVec[2]}
		v1 = sse.Xyz{X: x.EndVec[0], Y: x.EndVec[1], Z: x.EndVec[2]}
	}
	s := sse.New(x.Label, x.Chain, x.Start, x.End, typ, v0, v1)
	if x.SheetID != nil {
		s = s.WithSheet(*x.SheetID)
	}
	if x.Comment != "" {
		s = s.WithComment(x.Comment)
	}
	return s, nil
}

// labelIndex maps labels to positions. Duplicated labels map to -1.
type labelIndex struct {
	pos map[string]int
	n   int
}

func newLabelIndex(s []sse.SSE) labelIndex {
	idx := labelIndex{pos: make(map[string]int, len(s)), n: len(s)}
	for i, x := range s {
		if _, ok := idx.pos[x.Label]; ok {
			idx.pos[x.Label] = -1
		} else {
			idx.pos[x.Label] = i
		}
	}
	return idx
}

// ref is an SSE given by index or by label.
func ref(raw json.RawMessage, idx labelIndex) (int, error) {
	var i int
	if err := json.Unmarshal(raw, &i); err == nil {
		if i < 0 || i >= idx.n {
			return 0, fmt.Errorf("index %d out of range: %w", i, ErrFormat)
		}
		return i, nil
	}
	var l string
	if err := json.Unmarshal(raw, &l); err != nil {
		return 0, fmt.Errorf("%s is neither a label nor an index: %w", raw, ErrFormat)
	}
	switch i, ok := idx.pos[l]; {
	case !ok:
		return 0, fmt.Errorf("%q is not a label of an SSE: %w", l, ErrFormat)
	case i < 0:
		return 0, fmt.Errorf("label %q is not unique: %w", l, ErrFormat)
	default:
		return i, nil
	}
}

// connEntry is [a, b, 1] for parallel, [a, b, -1] for antiparallel.
func connEntry(c []json.RawMessage, idx labelIndex) (a, b int, typ int8, err error) {
	if len(c) != 3 {
		return 0, 0, 0, fmt.Errorf("want 2 SSEs and a direction, got %d elements: %w", len(c), ErrFormat)
	}
	if a, err = ref(c[0], idx); err != nil {
		return
	}
	if b, err = ref(c[1], idx); err != nil {
		return
	}
	var dir int
	if err = json.Unmarshal(c[2], &dir); err != nil || (dir != 1 && dir != -1) {
		return 0, 0, 0, fmt.Errorf("direction %s should be 1 or -1: %w", c[2], ErrFormat)
	}
	return a, b, int8(dir), nil
}

// mergeEntry is [label, first, last].
func mergeEntry(m []json.RawMessage, idx labelIndex) (annot.Alternative, error) {
	var alt annot.Alternative
	if len(m) != 3 {
		return alt, fmt.Errorf("want label, first and last, got %d elements: %w", len(m), ErrFormat)
	}
	if err := json.Unmarshal(m[0], &alt.Label); err != nil {
		return alt, fmt.Errorf("label %s: %w", m[0], ErrFormat)
	}
	var err error
	if alt.First, err = ref(m[1], idx); err != nil {
		return alt, err
	}
	if alt.Last, err = ref(m[2], idx); err != nil {
		return alt, err
	}
	return alt, nil
}
