// 8 Mar 2024

package annot

import "github.com/andrew-torda/sse_annot/pkg/sse"

// Perm says where things came from after reordering. Element i of the
// new order was element p[i] of the old order.
type Perm []int

// Identity does not move anything.
func Identity(n int) Perm {
	p := make(Perm, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Old gives the old index of new element i.
func (p Perm) Old(i int) int { return p[i] }

// Inverted gives, for each old index, the new index.
func (p Perm) Inverted() Perm {
	inv := make(Perm, len(p))
	for i, old := range p {
		inv[old] = i
	}
	return inv
}

// valid checks p is a permutation of 0..n-1
func (p Perm) valid(n int) bool {
	if len(p) != n {
		return false
	}
	seen := make([]bool, n)
	for _, x := range p {
		if x < 0 || x >= n || seen[x] {
			return false
		}
		seen[x] = true
	}
	return true
}

func (p Perm) apply(s []sse.SSE) []sse.SSE {
	ret := make([]sse.SSE, len(p))
	for i, old := range p {
		ret[i] = s[old]
	}
	return ret
}

// mapBack takes a matching on reordered SSEs to the original indices.
func mapBack(m Matching, tPerm, cPerm Perm) Matching {
	ret := make(Matching, len(m))
	for i, x := range m {
		ret[i] = Pair{tPerm.Old(x.T), cPerm.Old(x.C)}
	}
	return ret
}
