package index

import "slices"

// Overlap returns the value range shared by a and b, or an empty span.
func Overlap(a, b PostingList) Span {
	if len(a) == 0 || len(b) == 0 {
		return Span{}
	}
	lo := max(a[0], b[0])
	hi := min(a[len(a)-1], b[len(b)-1])
	if lo > hi {
		return Span{}
	}
	return Span{Lo: lo, Hi: hi + 1}
}

// ClipTo returns the positions of pl holding values inside the value range w.
// A boundary is only searched for when pl actually extends past it.
func ClipTo(pl PostingList, w Span) Span {
	if len(pl) == 0 || w.Empty() {
		return Span{}
	}
	s := Span{Lo: 0, Hi: len(pl)}
	if pl[0] < w.Lo {
		s.Lo, _ = slices.BinarySearch(pl, w.Lo)
	}
	if pl[len(pl)-1] >= w.Hi {
		n, _ := slices.BinarySearch(pl[s.Lo:], w.Hi)
		s.Hi = s.Lo + n
	}
	if s.Empty() {
		return Span{}
	}
	return s
}

// Clip returns the positional spans of a and b inside their shared value
// range. Nothing outside the returned spans can match.
//
// Disjoint value ranges are detected from the end points alone, before any
// search. If either span comes out empty both are returned empty.
func Clip(a, b PostingList) (Span, Span) {
	w := Overlap(a, b)
	if w.Empty() {
		return Span{}, Span{}
	}
	sa, sb := ClipTo(a, w), ClipTo(b, w)
	if sa.Empty() || sb.Empty() {
		return Span{}, Span{}
	}
	return sa, sb
}
