// 8 Mar 2024

package annot

import (
	"fmt"

	"github.com/andrew-torda/sse_annot/pkg/dense"
	"github.com/andrew-torda/sse_annot/pkg/sse"
)

// Scoring has the functions which say how good a match is. They come
// from the caller and are never changed here.
type Scoring struct {
	Metric        func(t, c sse.SSE) float64 // cost of matching t with c, smaller is better
	TypeMatch     func(t, c sse.Type) bool   // may t be matched with c at all ?
	SkipTemplate  func(t sse.SSE) float64    // cost of leaving a template unmatched
	SkipCandidate func(c sse.SSE) float64    // cost of leaving a candidate unmatched
}

// Context is one annotation problem. Treat it as a value. Operations
// which change something return a new Context. The exception is the
// Init...Connectivity functions, which are called once, just after
// NewContext.
//
// Matrices which have not been set are absent (their Present() is
// false). An absent Guide allows every pair. An absent exclusivity
// matrix means nothing excludes anything.
type Context struct {
	Templates  []sse.SSE
	Candidates []sse.SSE
	Scoring
	Guide dense.Mask // templates x candidates, which pairs may be matched
	TConn dense.Conn // ladders between templates
	CConn dense.Conn // ladders between candidates
	TExcl dense.Mask // templates which may not both be used
	CExcl dense.Mask
	Log   Log
}

// NewContext copies the SSE slices. Connectivity is absent until
// initialised.
func NewContext(scoring Scoring, templates, candidates []sse.SSE) Context {
	return Context{
		Templates:  append([]sse.SSE(nil), templates...),
		Candidates: append([]sse.SSE(nil), candidates...),
		Scoring:    scoring,
	}
}

// InitTemplateConnectivity sets the template ladders. It may only be
// called once.
func (c *Context) InitTemplateConnectivity(edges []dense.Edge) error {
	if c.TConn.Present() {
		return fmt.Errorf("template %w", ErrConnSet)
	}
	conn, err := dense.ConnFromEdges(len(c.Templates), edges)
	if err != nil {
		return fmt.Errorf("template connectivity: %w", err)
	}
	c.TConn = conn
	return nil
}

// InitCandidateConnectivity is the same for candidates.
func (c *Context) InitCandidateConnectivity(edges []dense.Edge) error {
	if c.CConn.Present() {
		return fmt.Errorf("candidate %w", ErrConnSet)
	}
	conn, err := dense.ConnFromEdges(len(c.Candidates), edges)
	if err != nil {
		return fmt.Errorf("candidate connectivity: %w", err)
	}
	c.CConn = conn
	return nil
}

// Copy gives a context with its own SSE slices. Matrices are values
// which are never changed after construction, so they are shared.
func (c Context) Copy() Context {
	r := c
	r.Templates = append([]sse.SSE(nil), c.Templates...)
	r.Candidates = append([]sse.SSE(nil), c.Candidates...)
	return r
}

// ApplyPerms reorders templates and candidates and every matrix that
// goes with them. Element i of the result is element tPerm[i] (or
// cPerm[i]) of c.
func (c Context) ApplyPerms(tPerm, cPerm Perm) (Context, error) {
	m, n := len(c.Templates), len(c.Candidates)
	if !tPerm.valid(m) || !cPerm.valid(n) {
		return Context{}, fmt.Errorf("permutations of %d and %d for %d templates, %d candidates: %w",
			len(tPerm), len(cPerm), m, n, ErrDims)
	}
	r := c
	r.Templates = tPerm.apply(c.Templates)
	r.Candidates = cPerm.apply(c.Candidates)
	var err error
	if r.Guide, err = c.Guide.Permuted(tPerm, cPerm); err != nil {
		return Context{}, fmt.Errorf("guide: %w", err)
	}
	if r.TConn, err = c.TConn.Permuted(tPerm); err != nil {
		return Context{}, fmt.Errorf("template connectivity: %w", err)
	}
	if r.CConn, err = c.CConn.Permuted(cPerm); err != nil {
		return Context{}, fmt.Errorf("candidate connectivity: %w", err)
	}
	if r.TExcl, err = c.TExcl.Permuted(tPerm, tPerm); err != nil {
		return Context{}, fmt.Errorf("template exclusivity: %w", err)
	}
	if r.CExcl, err = c.CExcl.Permuted(cPerm, cPerm); err != nil {
		return Context{}, fmt.Errorf("candidate exclusivity: %w", err)
	}
	return r, nil
}

// Ordered sorts templates and candidates by chain, start and end. The
// permutations are returned so results can be mapped back.
func (c Context) Ordered() (Context, Perm, Perm, error) {
	tPerm := Perm(sse.SortedIndex(c.Templates))
	cPerm := Perm(sse.SortedIndex(c.Candidates))
	r, err := c.ApplyPerms(tPerm, cPerm)
	if err != nil {
		return Context{}, nil, nil, err
	}
	return r, tPerm, cPerm, nil
}

// ValidateOrdering fails if either side is out of order. SSEs from
// more than one chain are allowed, but get a warning.
func (c Context) ValidateOrdering() error {
	if len(sse.Chains(c.Templates)) > 1 {
		c.Log.warnf("ValidateOrdering: passed template SSEs from more than one chain.")
	}
	if len(sse.Chains(c.Candidates)) > 1 {
		c.Log.warnf("ValidateOrdering: passed candidate SSEs from more than one chain.")
	}
	if !sse.IsSorted(c.Templates) {
		return fmt.Errorf("template %w", ErrUnordered)
	}
	if !sse.IsSorted(c.Candidates) {
		return fmt.Errorf("candidate %w", ErrUnordered)
	}
	return nil
}

// ValidateBetaGraph fails if either connectivity matrix is absent.
func (c Context) ValidateBetaGraph() error {
	if !c.TConn.Present() {
		return fmt.Errorf("template %w", ErrNoBetaGraph)
	}
	if !c.CConn.Present() {
		return fmt.Errorf("candidate %w", ErrNoBetaGraph)
	}
	return nil
}

// Validate checks the sizes and symmetry of whatever matrices are
// present.
func (c Context) Validate() error {
	m, n := len(c.Templates), len(c.Candidates)
	if c.Guide.Present() {
		if r, cc := c.Guide.Size(); r != m || cc != n {
			return fmt.Errorf("guide is %d x %d for %d templates, %d candidates: %w", r, cc, m, n, ErrDims)
		}
	}
	for _, x := range []struct {
		name string
		conn dense.Conn
		n    int
	}{{"template", c.TConn, m}, {"candidate", c.CConn, n}} {
		if !x.conn.Present() {
			continue
		}
		if x.conn.N() != x.n {
			return fmt.Errorf("%s connectivity is %d x %d for %d SSEs: %w", x.name, x.conn.N(), x.conn.N(), x.n, ErrDims)
		}
		if !x.conn.Symmetric() {
			return fmt.Errorf("%s connectivity is not symmetric", x.name)
		}
	}
	for _, x := range []struct {
		name string
		excl dense.Mask
		n    int
	}{{"template", c.TExcl, m}, {"candidate", c.CExcl, n}} {
		if !x.excl.Present() {
			continue
		}
		if r, cc := x.excl.Size(); r != x.n || cc != x.n {
			return fmt.Errorf("%s exclusivity is %d x %d for %d SSEs: %w", x.name, r, cc, x.n, ErrDims)
		}
		if !x.excl.Symmetric() {
			return fmt.Errorf("%s exclusivity is not symmetric", x.name)
		}
	}
	return nil
}

// allowed says if the guide lets template i go with candidate j.
func (c Context) allowed(i, j int) bool { return !c.Guide.Present() || c.Guide.At(i, j) }

// canPair is the type check plus the guide.
func (c Context) canPair(i, j int) bool {
	return c.TypeMatch(c.Templates[i].Type, c.Candidates[j].Type) && c.allowed(i, j)
}

// excluded is false if the matrix is absent.
func excluded(m dense.Mask, i, j int) bool { return m.Present() && m.At(i, j) }

// labels are used for debugging output.
func labels(s []sse.SSE) []string {
	ret := make([]string, len(s))
	for i, x := range s {
		ret[i] = x.Label
	}
	return ret
}
