package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineDisjoint(t *testing.T) {
	e := NewEngine()
	d := e.Plan(PostingList{1, 2, 3}, PostingList{100, 200})
	assert.Equal(t, StrategySkip, d.Strategy)
	assert.True(t, d.Empty())
	assert.Equal(t, Span{}, d.Query)
	assert.Equal(t, Span{}, d.Column)
	assert.Equal(t, 0, e.Count(PostingList{1, 2, 3}, PostingList{100, 200}))

	// forcing a strategy never runs it on a disjoint pair
	e = NewEngine(WithStrategy(StrategyMerge))
	assert.Equal(t, StrategySkip, e.Plan(PostingList{100, 200}, PostingList{1, 2, 3}).Strategy)

	assert.Equal(t, StrategySkip, e.Plan(nil, fibB).Strategy)
	assert.Equal(t, StrategySkip, e.Plan(fibA, nil).Strategy)
}

func TestEngineSkewed(t *testing.T) {
	column := make(PostingList, 1000000)
	for k := range column {
		column[k] = k
	}
	query := PostingList{10, 200000, 400000, 600000, 999999}

	e := NewEngine()
	d := e.Plan(query, column)
	assert.NotEqual(t, StrategyMerge, d.Strategy)
	assert.Equal(t, StrategyBinary, d.Strategy)
	assert.Equal(t, Span{Lo: 0, Hi: 5}, d.Query)
	assert.Equal(t, Span{Lo: 10, Hi: 1000000}, d.Column)

	assert.Equal(t, 5, e.Count(query, column))
	assert.Equal(t, 5, e.Count(column, query))
	assert.Equal(t, query, e.Extract(query, column))
}

func TestEngineScenario(t *testing.T) {
	assert.Equal(t, 2, Count(fibA, fibB))
	assert.Equal(t, PostingList{2, 8}, Extract(fibA, fibB))
	assert.Equal(t, PostingList{2, 8}, Extract(fibB, fibA))

	// clipping to [2,15) leaves fibA whole and fibB at positions 1..5
	d := NewEngine().Plan(fibA, fibB)
	assert.Equal(t, Span{Lo: 0, Hi: 7}, d.Query)
	assert.Equal(t, Span{Lo: 1, Hi: 6}, d.Column)
	assert.Equal(t, StrategyMerge, d.Strategy)

	columns := []PostingList{fibB[:3], fibB[3:5], fibB[5:]}
	assert.Equal(t, 2, CountMany(fibA, columns))
	assert.Equal(t, 0, CountMany(fibA, nil))
}

func TestEngineForced(t *testing.T) {
	for _, s := range Strategies() {
		e := NewEngine(WithStrategy(s))
		assert.Equal(t, s, e.Strategy())
		assert.Equal(t, s, e.Plan(fibA, fibB).Strategy)
		assert.Equal(t, PostingList{2, 8}, e.Extract(fibA, fibB), "strategy %s", s)
	}

	e := NewEngine(WithStrategy(StrategyBinary), WithStrategy(StrategySkip))
	assert.Equal(t, StrategyBinary, e.Strategy())

	e = NewEngine(WithStrategy(StrategyBinary), WithStrategy(StrategyAuto))
	assert.Equal(t, StrategyAuto, e.Strategy())
}

func TestEngineLookupTable(t *testing.T) {
	table := BuildLookup(fibA)
	e := NewEngine(WithLookupTable(table))
	assert.Equal(t, StrategyLookup, e.Strategy())

	columns := []PostingList{fibB, {0, 1}, {4, 5, 6, 7}, {14, 15, 16}}
	want := []int{2, 0, 2, 1}
	for k, c := range columns {
		assert.Equal(t, want[k], e.Count(fibA, c), "column %v", c)
	}
	assert.Equal(t, 5, e.CountMany(fibA, columns))
}

func TestEngineSelectorOption(t *testing.T) {
	query := PostingList{10, 20, 30}
	column := make(PostingList, 100)
	for k := range column {
		column[k] = k
	}
	// clipping leaves 21 column rows, more than 3*ceil(log2(21)) = 15
	require.NotEqual(t, StrategyMerge, NewEngine().Plan(query, column).Strategy)

	e := NewEngine(WithSelector(Selector{Crossover: 10}))
	assert.Equal(t, StrategyMerge, e.Plan(query, column).Strategy)
	assert.Equal(t, 3, e.Count(query, column))
}
