// 7 Mar 2024

// Package sheet works out which strands belong to one beta-sheet and
// checks that sheets in two structures correspond to each other.
// A sheet is a connected component of the ladder graph.
package sheet

import (
	"fmt"
	"sort"

	"github.com/biogo/graph"

	"github.com/andrew-torda/sse_annot/pkg/dense"
)

// strandNode lets us get back from a graph node to the SSE index.
type strandNode struct {
	graph.Node
	idx int
}

// Components returns the connected components of the ladder graph.
// Every vertex is in exactly one component, so a strand without ladders
// is a sheet by itself. Each component is sorted and components are in
// order of their first vertex.
func Components(c dense.Conn) ([][]int, error) {
	g := graph.NewUndirected()
	nodes := make([]*strandNode, c.N())
	for i := range nodes {
		nodes[i] = &strandNode{Node: g.NewNode(), idx: i}
		g.Add(nodes[i])
	}
	for _, e := range c.Edges() {
		if err := g.ConnectWith(nodes[e.A], nodes[e.B], graph.NewEdge()); err != nil {
			return nil, fmt.Errorf("ladder %d-%d: %w", e.A, e.B, err)
		}
	}
	var ret [][]int
	for _, cc := range graph.ConnectedComponents(g, func(graph.Edge) bool { return true }) {
		comp := make([]int, 0, len(cc))
		for _, n := range cc {
			comp = append(comp, n.(*strandNode).idx)
		}
		sort.Ints(comp)
		ret = append(ret, comp)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret, nil
}

// IDs numbers the sheets from 1. Vertices for which isSheet is false
// get 0 and do not count towards numbering.
func IDs(c dense.Conn, isSheet func(i int) bool) ([]int, error) {
	comps, err := Components(c)
	if err != nil {
		return nil, err
	}
	ids := make([]int, c.N())
	next := 1
	for _, comp := range comps {
		used := false
		for _, i := range comp {
			if isSheet(i) {
				ids[i] = next
				used = true
			}
		}
		if used {
			next++
		}
	}
	return ids, nil
}

// Pair is a template sheet ID and the candidate sheet ID of a strand
// matched to it.
type Pair struct{ Template, Candidate int }

// Match looks at the sheet IDs of matched strands. If every template
// sheet goes to one candidate sheet and every candidate sheet comes
// from one template sheet, it returns the mapping from candidate sheet
// to template sheet. Otherwise rename is nil and problems says what
// went wrong.
func Match(pairs []Pair) (rename map[int]int, problems []string) {
	byT := make(map[int][]int)
	byC := make(map[int][]int)
	for _, p := range pairs {
		byT[p.Template] = addUniq(byT[p.Template], p.Candidate)
		byC[p.Candidate] = addUniq(byC[p.Candidate], p.Template)
	}
	for _, k := range sortedKeys(byT) {
		if v := byT[k]; len(v) > 1 {
			problems = append(problems, fmt.Sprintf("Template sheet %d matched to query sheets %v", k, v))
		}
	}
	for _, k := range sortedKeys(byC) {
		if v := byC[k]; len(v) > 1 {
			problems = append(problems, fmt.Sprintf("Query sheet %d matched to template sheets %v", k, v))
		}
	}
	if problems != nil {
		return nil, problems
	}
	rename = make(map[int]int, len(byC))
	for c, t := range byC {
		rename[c] = t[0]
	}
	return rename, nil
}

func addUniq(s []int, x int) []int {
	for _, y := range s {
		if y == x {
			return s
		}
	}
	return append(s, x)
}

func sortedKeys(m map[int][]int) []int {
	k := make([]int, 0, len(m))
	for x := range m {
		k = append(k, x)
	}
	sort.Ints(k)
	return k
}
