// 3 Mar 2024

// Package sse has the secondary structure element (helix, strand) as it
// is used by the annotation code. An SSE lives in a chain, covers a
// range of residues and, once fitted, has a start and end point in
// space.
// SSEs are passed around by value. Methods which change something
// return a new SSE, so a slice of SSEs can be shared between
// annotation contexts.
package sse

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Values used for an SSE which was not found in the query.
const (
	NotFoundChain = "?"
	NotFoundStart = 0
	NotFoundEnd   = 0
)

// ErrCrossChain is returned when one tries to join SSEs from different
// chains.
var ErrCrossChain = errors.New("joined SSEs must be in the same chain")

// SSE is a secondary structure element with its position in space.
type SSE struct {
	Label    string
	Chain    string
	Start    int // residue number of first residue
	End      int // residue number of last residue
	Type     Type
	SheetID  int // only meaningful if HasSheet
	HasSheet bool
	Nested   []SSE // parts this SSE was made from, if it was joined
	Comment  string
	StartVec Xyz
	EndVec   Xyz
}

// New makes an SSE without a sheet.
func New(label, chain string, start, end int, typ Type, startVec, endVec Xyz) SSE {
	return SSE{Label: label, Chain: chain, Start: start, End: end, Type: typ,
		StartVec: startVec, EndVec: endVec}
}

// NotFound returns the placeholder for a template which has no
// counterpart.
func NotFound(label string) SSE {
	return SSE{Label: label, Chain: NotFoundChain, Start: NotFoundStart,
		End: NotFoundEnd, Type: NotFoundType, Comment: "Not found."}
}

// IsNotFound is true for placeholders.
func (s SSE) IsNotFound() bool { return s.Type == NotFoundType }

// IsHelix and IsSheet just look at the type.
func (s SSE) IsHelix() bool { return s.Type.IsHelix() }
func (s SSE) IsSheet() bool { return s.Type.IsSheet() }

// Length in residues. Zero for a placeholder.
func (s SSE) Length() int {
	if s.IsNotFound() {
		return 0
	}
	return s.End - s.Start + 1
}

// SpaceLen is the distance between the start and end points.
func (s SSE) SpaceLen() float64 { return Dist(s.StartVec, s.EndVec) }

// Relabeled returns a copy with a new label.
func (s SSE) Relabeled(label string) SSE {
	s.Label = label
	return s
}

// WithSheet returns a copy with the sheet set.
func (s SSE) WithSheet(id int) SSE {
	s.SheetID, s.HasSheet = id, true
	return s
}

// WithComment appends to the comment and returns the copy.
func (s SSE) WithComment(c string) SSE {
	if c == "" {
		return s
	}
	s.Comment += c
	return s
}

// String is for debugging and warnings.
func (s SSE) String() string {
	return fmt.Sprintf("SSE %s in chain %s residues %d-%d (type %s)",
		s.Label, s.Chain, s.Start, s.End, s.Type)
}

// Compare orders by chain, then start, then end.
func Compare(a, b SSE) int {
	if c := strings.Compare(a.Chain, b.Chain); c != 0 {
		return c
	}
	if a.Start != b.Start {
		if a.Start < b.Start {
			return -1
		}
		return 1
	}
	switch {
	case a.End < b.End:
		return -1
	case a.End > b.End:
		return 1
	}
	return 0
}

// IsSorted checks that a slice is in ascending order according to
// Compare.
func IsSorted(s []SSE) bool {
	for i := 1; i < len(s); i++ {
		if Compare(s[i-1], s[i]) > 0 {
			return false
		}
	}
	return true
}

// SortedIndex returns the permutation which sorts s. perm[new] = old.
// The sort is stable, so equal SSEs keep their order.
func SortedIndex(s []SSE) []int {
	perm := make([]int, len(s))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return Compare(s[perm[i]], s[perm[j]]) < 0
	})
	return perm
}

// Chains returns the distinct chain names in order of appearance.
func Chains(s []SSE) []string {
	var ret []string
	seen := make(map[string]bool)
	for _, x := range s {
		if !seen[x.Chain] {
			seen[x.Chain] = true
			ret = append(ret, x.Chain)
		}
	}
	return ret
}

// Join makes one SSE from several pieces in the same chain. The result
// starts where the earliest part starts and ends where the latest part
// ends, in sequence and in space. The parts are kept as nested SSEs.
// If the parts do not agree on their sheet, warn is non-empty and the
// sheet of the first part is used.
func Join(parts ...SSE) (joined SSE, warn string, err error) {
	if len(parts) < 2 {
		return joined, "", fmt.Errorf("join needs at least 2 SSEs, got %d", len(parts))
	}
	first, last := 0, 0
	typ := parts[0].Type
	labels := make([]string, len(parts))
	var cmmt strings.Builder
	sheetsDiffer := false
	for i, p := range parts {
		if p.Chain != parts[0].Chain {
			return joined, "", fmt.Errorf("%w: %s and %s", ErrCrossChain, parts[0].Chain, p.Chain)
		}
		if p.Start < parts[first].Start {
			first = i
		}
		if p.End > parts[last].End {
			last = i
		}
		if p.HasSheet != parts[0].HasSheet || p.SheetID != parts[0].SheetID {
			sheetsDiffer = true
		}
		if i > 0 {
			typ = CombineTypes(typ, p.Type)
		}
		labels[i] = p.Label
		cmmt.WriteString(p.Comment)
	}
	f, l := parts[first], parts[last]
	joined = SSE{
		Label:    strings.Join(labels, "+"),
		Chain:    f.Chain,
		Start:    f.Start,
		End:      l.End,
		Type:     typ,
		SheetID:  parts[0].SheetID,
		HasSheet: parts[0].HasSheet,
		StartVec: f.StartVec,
		EndVec:   l.EndVec,
		Nested:   append([]SSE(nil), parts...),
		Comment: fmt.Sprintf("Created by joining %d SSEs: %s.%s",
			len(parts), strings.Join(labels, ", "), cmmt.String()),
	}
	if sheetsDiffer {
		warn = fmt.Sprintf("Joining beta-strands with different sheet ID (%s)", joined.Label)
	}
	return joined, warn, nil
}
