package search

import (
	"github.com/awesomefly/easyextract/index"
)

// Session is one query prepared for many columns. The lookup table, when
// there is one, is built once here and then only read, so a Session can be
// shared by every worker.
type Session struct {
	Query  index.PostingList
	engine *index.Engine
	table  *index.LookupTable
}

// NewSession prepares query. A forced lookup strategy always builds the
// table; otherwise it is built only when budget is positive and the table
// for query fits in budget bytes, in which case every column is probed
// through it.
func NewSession(query index.PostingList, strategy index.Strategy, selector index.Selector, budget int) *Session {
	s := &Session{Query: query}

	useTable := strategy == index.StrategyLookup ||
		(strategy == index.StrategyAuto && budget > 0 && len(query) > 0 && index.LookupBytes(query) <= budget)
	if useTable && len(query) > 0 {
		s.table = index.BuildLookup(query)
		s.engine = index.NewEngine(index.WithSelector(selector), index.WithLookupTable(s.table))
		return s
	}
	s.engine = index.NewEngine(index.WithSelector(selector), index.WithStrategy(strategy))
	return s
}

// Table returns the shared lookup table, or nil when columns go through the
// selector.
func (s *Session) Table() *index.LookupTable { return s.table }

func (s *Session) Engine() *index.Engine { return s.engine }

// Intersect adds the matches of column to r.
func (s *Session) Intersect(column index.PostingList, r *index.Result) index.Decision {
	return s.engine.Intersect(s.Query, column, r)
}
