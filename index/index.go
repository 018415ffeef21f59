package index

// Intersector reports every row present in both query and column into r.
//
// Binary and Galloping iterate the first argument and search the second, so
// they are fastest with the shorter list first. Merge and Lookup are
// indifferent to the order. Rows are reported in ascending order.
type Intersector interface {
	Intersect(query, column PostingList, r *Result)
}

// Result accumulates the matches of one or more intersections.
type Result struct {
	Count int
	Rows  PostingList

	materialize bool
}

// NewCounter returns a Result that only counts matches.
func NewCounter() *Result {
	return &Result{}
}

// NewCollector returns a Result that also keeps the matched rows.
func NewCollector(hint int) *Result {
	return &Result{Rows: make(PostingList, 0, hint), materialize: true}
}

func (r *Result) add(v int) {
	r.Count++
	if r.materialize {
		r.Rows = append(r.Rows, v)
	}
}

// Materialized reports whether r keeps matched rows.
func (r *Result) Materialized() bool { return r.materialize }

// Reset clears r for reuse, keeping the row buffer.
func (r *Result) Reset() {
	r.Count = 0
	r.Rows = r.Rows[:0]
}

// For returns the Intersector implementing s. StrategyAuto and StrategySkip
// have no implementation of their own and return nil.
func For(s Strategy) Intersector {
	switch s {
	case StrategyMerge:
		return Merge{}
	case StrategyBinary:
		return Binary{}
	case StrategyGalloping:
		return Galloping{}
	case StrategyLookup:
		return Lookup{}
	}
	return nil
}
