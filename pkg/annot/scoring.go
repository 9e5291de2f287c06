// 12 Mar 2024

package annot

import (
	"math"

	"github.com/andrew-torda/sse_annot/pkg/sse"
)

// MaxMetric holds the skip penalties. Leaving out a template costs
// A + B * length, leaving out a candidate costs C * length. Lengths are
// distances between the start and end points.
type MaxMetric struct{ A, B, C float64 }

// DefaultMaxMetric are the values we normally use.
var DefaultMaxMetric = MaxMetric{30, 0, 0}

// MetricNo3 adds the distances between the start points and between
// the end points.
func MetricNo3(t, c sse.SSE) float64 {
	return sse.Dist(t.StartVec, c.StartVec) + sse.Dist(t.EndVec, c.EndVec)
}

// LengthDiffPenalty grows with the difference in residue counts,
// relative to their geometric mean.
func LengthDiffPenalty(t, c sse.SSE) float64 {
	const alpha, betaSq = 10, 9
	l1, l2 := float64(t.Length()), float64(c.Length())
	return alpha * math.Abs(l1-l2) / math.Sqrt(l1*l2+betaSq)
}

// SameKind lets helices go with helices and strands with strands.
func SameKind(t, c sse.Type) bool {
	return (t.IsHelix() && c.IsHelix()) || (t.IsSheet() && c.IsSheet())
}

// DefaultScoring uses MetricNo3, with LengthDiffPenalty added if
// lengthPenalty is set.
func DefaultScoring(mm MaxMetric, lengthPenalty bool) Scoring {
	metric := MetricNo3
	if lengthPenalty {
		metric = func(t, c sse.SSE) float64 { return MetricNo3(t, c) + LengthDiffPenalty(t, c) }
	}
	return Scoring{
		Metric:        metric,
		TypeMatch:     SameKind,
		SkipTemplate:  func(t sse.SSE) float64 { return mm.A + mm.B*t.SpaceLen() },
		SkipCandidate: func(c sse.SSE) float64 { return mm.C * c.SpaceLen() },
	}
}
