// 12 Mar 2024

package annot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Annotator is any of the matching strategies.
type Annotator func(ctx context.Context, c Context) (Matching, error)

// Strategy names an Annotator.
type Strategy byte

const (
	StratDynProg Strategy = iota
	StratBB
	StratMixed
	StratCombined
)

var stratNames = []string{"dp", "bb", "mom", "combined"}

func (s Strategy) String() string {
	if int(s) < len(stratNames) {
		return stratNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// ParseStrategy accepts the names printed by String.
func ParseStrategy(s string) (Strategy, error) {
	for i, n := range stratNames {
		if strings.EqualFold(s, n) {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q, want one of %s", s, strings.Join(stratNames, ", "))
}

// StratOpts only matter for some strategies.
type StratOpts struct {
	Soft     bool          // soft order for Mixed
	Timeout  time.Duration // if > 0, Mixed falls back to DynProg after this long
	Fallback string        // warning when falling back
}

// DefaultFallbackWarning is used when StratOpts.Fallback is empty.
const DefaultFallbackWarning = "MOM annotator timeout, falling back to DP annotator"

// StrategyFunc gives the Annotator for s.
func StrategyFunc(s Strategy, opts StratOpts) (Annotator, error) {
	switch s {
	case StratDynProg:
		return DynProg, nil
	case StratBB:
		return BranchAndBound, nil
	case StratCombined:
		return Combined, nil
	case StratMixed:
		mixed := func(ctx context.Context, c Context) (Matching, error) { return Mixed(ctx, c, opts.Soft) }
		if opts.Timeout <= 0 {
			return mixed, nil
		}
		warn := opts.Fallback
		if warn == "" {
			warn = DefaultFallbackWarning
		}
		return Fallback(mixed, DynProg, opts.Timeout, warn), nil
	}
	return nil, fmt.Errorf("no annotator for %v", s)
}

// Fallback runs primary with a time limit. If it is not finished in
// time, its work is thrown away, the warning is written and backup is
// run instead. Primary is told to stop through its context, but we do
// not wait for it.
func Fallback(primary, backup Annotator, timeout time.Duration, warning string) Annotator {
	type result struct {
		m   Matching
		err error
	}
	return func(ctx context.Context, c Context) (Matching, error) {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		done := make(chan result, 1)
		go func() {
			m, err := primary(pctx, c)
			done <- result{m, err}
		}()
		var r result
		select {
		case r = <-done:
		case <-pctx.Done():
			r.err = pctx.Err()
		}
		if r.err == nil || !errors.Is(r.err, context.DeadlineExceeded) || ctx.Err() != nil {
			return r.m, r.err
		}
		if warning != "" {
			c.Log.warnf("%s", warning)
		}
		return backup(ctx, c)
	}
}
