package index

// Span is a half-open interval [Lo, Hi). It is used both for positions inside
// a PostingList and for value ranges.
type Span struct {
	Lo int
	Hi int
}

func (s Span) Len() int {
	if s.Hi <= s.Lo {
		return 0
	}
	return s.Hi - s.Lo
}

func (s Span) Empty() bool { return s.Hi <= s.Lo }

// Contains reports whether v lies in [Lo, Hi).
func (s Span) Contains(v int) bool { return v >= s.Lo && v < s.Hi }

// Overlaps reports whether two value ranges share at least one value.
func (s Span) Overlaps(o Span) bool {
	return !s.Empty() && !o.Empty() && s.Lo < o.Hi && o.Lo < s.Hi
}
