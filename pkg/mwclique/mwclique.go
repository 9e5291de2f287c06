// 5 Mar 2024

// Package mwclique finds a maximum weight clique by branch and bound.
//
// The graph is given by a weight per vertex and an edge function, so
// the caller never has to build an adjacency matrix for the product
// graphs used in ordered matching. Vertices with zero or negative
// weight are never part of the answer. The caller also gives the
// largest clique size that can make sense, which stops the search from
// going deeper.
//
// The search keeps an explicit stack of frames. Each frame has the
// vertices which are still compatible with everything on the stack
// below it, so there is no shared table indexed by depth.
package mwclique

import (
	"context"
	"sort"
)

// cancelCheck is how many iterations we do between looking at the
// context.
const cancelCheck = 10000

// Problem describes the graph.
type Problem struct {
	N       int                 // number of vertices
	W       []float64           // weight of each vertex, len(W) == N
	Edge    func(u, v int) bool // must be symmetric
	MaxSize int                 // never look for cliques bigger than this
}

// Stats are for debugging output.
type Stats struct {
	Eligible   int // vertices with positive weight
	Iterations int
	Size       int // size of the clique we found
	Weight     float64
}

// frame is one level of the search. allowed holds indices into the
// sorted vertex list, in ascending order. The ones before next have
// already been tried at this level.
type frame struct {
	weight  float64
	allowed []int
	next    int
}

// Solve returns the vertices of an inclusion-maximal clique of maximum
// total weight, in order of decreasing weight. If the context is
// cancelled, partial results are thrown away and the context's error
// is returned.
func Solve(ctx context.Context, p Problem) ([]int, Stats, error) {
	if len(p.W) != p.N {
		panic("program bug, weight slice does not match number of vertices")
	}
	s := sortedPositive(p.W)
	stats := Stats{Eligible: len(s)}
	ws := make([]float64, len(s)) // weights in sorted order
	for i, u := range s {
		ws[i] = p.W[u]
	}

	root := frame{allowed: make([]int, len(s))}
	for i := range root.allowed {
		root.allowed[i] = i
	}
	stack := []frame{root}
	path := make([]int, 0, p.MaxSize) // path[k] is the vertex added by stack[k+1]
	var best []int
	bestW := 0.0

	for iter := 0; len(stack) > 0; iter++ {
		if iter%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				stats.Iterations = iter
				return nil, stats, err
			}
		}
		stats.Iterations = iter + 1
		level := len(stack) - 1
		top := &stack[level]
		if level >= p.MaxSize || top.next == len(top.allowed) {
			if top.weight > bestW {
				bestW = top.weight
				best = append(best[:0], path...)
			}
			stack = pop(stack, &path)
			continue
		}

		room := p.MaxSize - level
		bound := top.weight
		for _, i := range top.allowed[top.next:] {
			if room == 0 {
				break
			}
			bound += ws[i]
			room--
		}
		if bound <= bestW { // nothing better below here
			stack = pop(stack, &path)
			continue
		}

		v := top.allowed[top.next]
		top.next++
		child := frame{weight: top.weight + ws[v]}
		if level+1 < p.MaxSize {
			rest := top.allowed[top.next:]
			child.allowed = make([]int, 0, len(rest))
			for _, i := range rest {
				if p.Edge(s[v], s[i]) {
					child.allowed = append(child.allowed, i)
				}
			}
		}
		path = append(path, v)
		stack = append(stack, child)
	}

	ret := make([]int, len(best))
	for i, v := range best {
		ret[i] = s[v]
	}
	stats.Size, stats.Weight = len(ret), bestW
	return ret, stats, nil
}

// pop removes the top frame and the vertex it added.
func pop(stack []frame, path *[]int) []frame {
	if n := len(*path); n > 0 && len(stack) > 1 {
		*path = (*path)[:n-1]
	}
	return stack[:len(stack)-1]
}

// sortedPositive returns the vertices with positive weight, heaviest
// first. Equal weights keep their original order.
func sortedPositive(w []float64) []int {
	s := make([]int, 0, len(w))
	for u, x := range w {
		if x > 0 {
			s = append(s, u)
		}
	}
	sort.SliceStable(s, func(i, j int) bool { return w[s[i]] > w[s[j]] })
	return s
}
