// 3 Mar 2024
// Vector arithmetic for the end points of secondary structure elements.
// This started life as the calpha geometry code, but SSE end points are
// fitted, not read, so we work in float64 and do not check for broken
// distances.

package sse

import (
	"fmt"
	"math"
)

// Xyz is a point or a vector in space, in Ångström.
type Xyz struct{ X, Y, Z float64 }

// Sub returns a - b
func (a Xyz) Sub(b Xyz) Xyz { return Xyz{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Add returns a + b
func (a Xyz) Add(b Xyz) Xyz { return Xyz{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Scale multiplies each component by f
func (a Xyz) Scale(f float64) Xyz { return Xyz{f * a.X, f * a.Y, f * a.Z} }

// Len2 gives us the length squared
func (a Xyz) Len2() float64 { return a.X*a.X + a.Y*a.Y + a.Z*a.Z }

// Len returns the vector length
func (a Xyz) Len() float64 { return math.Sqrt(a.Len2()) }

// Dist is the distance between two points.
func Dist(a, b Xyz) float64 { return a.Sub(b).Len() }

// Lerp walks a fraction f of the way from a to b.
func Lerp(a, b Xyz, f float64) Xyz { return a.Add(b.Sub(a).Scale(f)) }

// String is mainly for debugging.
func (a Xyz) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", a.X, a.Y, a.Z)
}
