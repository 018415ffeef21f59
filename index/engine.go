package index

// Decision records how one query/column pair is intersected.
type Decision struct {
	Strategy Strategy
	// Query and Column are the positions left after clipping.
	Query  Span
	Column Span
}

// Empty reports whether clipping left nothing to compare.
func (d Decision) Empty() bool { return d.Query.Empty() || d.Column.Empty() }

// Engine composes clipping, strategy selection and execution. An Engine is
// immutable once built and safe for concurrent use.
type Engine struct {
	selector Selector
	force    Strategy
	table    *LookupTable
}

type Option func(*Engine)

// WithSelector replaces the default Selector.
func WithSelector(s Selector) Option {
	return func(e *Engine) { e.selector = s }
}

// WithStrategy forces one strategy for every column. StrategyAuto restores
// selection; StrategySkip is ignored.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		if s != StrategySkip {
			e.force = s
		}
	}
}

// WithLookupTable probes every column through t, which must have been built
// from the query passed to Intersect.
func WithLookupTable(t *LookupTable) Option {
	return func(e *Engine) {
		e.table = t
		e.force = StrategyLookup
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy returns the forced strategy, or StrategyAuto.
func (e *Engine) Strategy() Strategy { return e.force }

// Plan clips the pair and chooses a strategy without touching the rows
// inside the clipped spans.
func (e *Engine) Plan(query, column PostingList) Decision {
	qs, cs := Clip(query, column)
	d := Decision{Query: qs, Column: cs}
	switch {
	case d.Empty():
		d.Strategy = StrategySkip
	case e.force != StrategyAuto:
		d.Strategy = e.force
	default:
		d.Strategy = e.selector.Select(qs.Len(), cs.Len())
	}
	return d
}

// Execute runs d against the pair it was planned for.
func (e *Engine) Execute(query, column PostingList, d Decision, r *Result) {
	if d.Strategy == StrategySkip {
		return
	}
	q, c := query.Slice(d.Query), column.Slice(d.Column)

	switch d.Strategy {
	case StrategyMerge:
		Merge{}.Intersect(q, c, r)
	case StrategyBinary:
		if len(c) < len(q) {
			q, c = c, q
		}
		Binary{}.Intersect(q, c, r)
	case StrategyGalloping:
		if len(c) < len(q) {
			q, c = c, q
		}
		Galloping{}.Intersect(q, c, r)
	case StrategyLookup:
		Lookup{Table: e.table}.Intersect(q, c, r)
	}
}

// Intersect plans and executes one pair, adding matches to r.
func (e *Engine) Intersect(query, column PostingList, r *Result) Decision {
	d := e.Plan(query, column)
	e.Execute(query, column, d, r)
	return d
}

// Count returns the number of rows shared by query and column.
func (e *Engine) Count(query, column PostingList) int {
	var r Result
	e.Intersect(query, column, &r)
	return r.Count
}

// Extract returns the rows shared by query and column in ascending order.
func (e *Engine) Extract(query, column PostingList) PostingList {
	r := NewCollector(0)
	e.Intersect(query, column, r)
	return r.Rows
}

// CountMany sums Count over columns.
func (e *Engine) CountMany(query PostingList, columns []PostingList) int {
	var r Result
	for _, c := range columns {
		e.Intersect(query, c, &r)
	}
	return r.Count
}

// Count intersects with a default Engine.
func Count(query, column PostingList) int {
	return NewEngine().Count(query, column)
}

// Extract intersects with a default Engine.
func Extract(query, column PostingList) PostingList {
	return NewEngine().Extract(query, column)
}

// CountMany intersects every column with a default Engine.
func CountMany(query PostingList, columns []PostingList) int {
	return NewEngine().CountMany(query, columns)
}
