package index

// PostingList is the sorted list of row indices stored for one column, or the
// set of target rows of a query.
//
// Callers must guarantee the list is strictly increasing and non-negative.
// The intersection code never re-checks this: an unsorted or duplicated list
// yields undefined results, not an error. Use Valid in tests and at ingestion
// boundaries.
type PostingList []int

func (pl PostingList) Len() int { return len(pl) }

// Front returns the smallest row. pl must not be empty.
func (pl PostingList) Front() int { return pl[0] }

// Back returns the largest row. pl must not be empty.
func (pl PostingList) Back() int { return pl[len(pl)-1] }

// Range returns the value range [Front, Back+1) of pl, or an empty span.
func (pl PostingList) Range() Span {
	if len(pl) == 0 {
		return Span{}
	}
	return Span{Lo: pl[0], Hi: pl[len(pl)-1] + 1}
}

// Valid reports whether pl is strictly increasing and non-negative.
func (pl PostingList) Valid() bool {
	for i, v := range pl {
		if v < 0 {
			return false
		}
		if i > 0 && pl[i-1] >= v {
			return false
		}
	}
	return true
}

// Slice returns the sub-list covered by the positional span s.
func (pl PostingList) Slice(s Span) PostingList {
	return pl[s.Lo:s.Hi]
}
