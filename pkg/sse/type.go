// 3 Mar 2024

package sse

// Type is the one character DSSP-like code for the kind of SSE.
type Type byte

const (
	NotFoundType Type = 'X'
	MixedHelix   Type = 'h' // a helix made by joining different helix types
	HelixG       Type = 'G' // 3-10 helix
	HelixH       Type = 'H' // alpha helix
	HelixI       Type = 'I' // pi helix
	Strand       Type = 'E'
	Bridge       Type = 'B' // isolated beta bridge
)

// IsHelix is true for all the helix types, including mixed helices.
func (t Type) IsHelix() bool {
	switch t {
	case HelixH, HelixG, HelixI, MixedHelix:
		return true
	}
	return false
}

// IsSheet is true for strands and isolated bridges.
func (t Type) IsSheet() bool { return t == Strand || t == Bridge }

// String returns the one letter code.
func (t Type) String() string { return string(t) }

// ParseType converts the one letter code. ok is false for anything
// we do not know about.
func ParseType(s string) (t Type, ok bool) {
	if len(s) != 1 {
		return NotFoundType, false
	}
	switch t = Type(s[0]); t {
	case NotFoundType, MixedHelix, HelixG, HelixH, HelixI, Strand, Bridge:
		return t, true
	}
	return NotFoundType, false
}

// CombineTypes says what type we get when two SSEs are joined.
// Equal types stay the same, two helices become a mixed helix, two
// kinds of strand become a strand. Anything else cannot be joined and
// is marked as not found.
func CombineTypes(a, b Type) Type {
	switch {
	case a == b:
		return a
	case a.IsHelix() && b.IsHelix():
		return MixedHelix
	case a.IsSheet() && b.IsSheet():
		return Strand
	}
	return NotFoundType
}
