package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupTable(t *testing.T) {
	tab := BuildLookup(fibA)
	assert.Equal(t, Span{Lo: 2, Hi: 15}, tab.Range())
	assert.Equal(t, len(fibA), tab.Len())
	assert.Equal(t, 8, tab.Bytes())
	assert.Equal(t, LookupBytes(fibA), tab.Bytes())

	for v := 0; v < 20; v++ {
		assert.Equal(t, v >= 2 && v <= 14 && v%2 == 0, tab.Contains(v), "value %d", v)
	}

	r := NewCollector(0)
	tab.Probe(fibB, r)
	assert.Equal(t, PostingList{2, 8}, r.Rows)
}

func TestLookupTableBounds(t *testing.T) {
	tab := BuildLookup(PostingList{1000, 1001, 1063, 1064})
	for _, v := range []int{
		-1, 0, 999, 1065, 2000,
		math.MaxInt, math.MaxInt - 1, math.MinInt, math.MinInt + 1,
		int(math.MaxInt32), -int(math.MaxInt32),
	} {
		assert.False(t, tab.Contains(v), "value %d", v)
	}
	assert.True(t, tab.Contains(1000))
	assert.True(t, tab.Contains(1064))
	assert.False(t, tab.Contains(1002))

	r := NewCounter()
	tab.Probe(PostingList{0, 999, 1000, 1064, 1065, math.MaxInt}, r)
	assert.Equal(t, 2, r.Count)
}

func TestLookupTableEmpty(t *testing.T) {
	tab := BuildLookup(nil)
	assert.Equal(t, 0, tab.Bytes())
	assert.Equal(t, 0, tab.Len())
	assert.Equal(t, 0, LookupBytes(nil))
	for _, v := range []int{0, 1, -1, math.MaxInt, math.MinInt} {
		assert.False(t, tab.Contains(v))
	}

	r := NewCounter()
	Lookup{Table: tab}.Intersect(nil, fibB, r)
	assert.Equal(t, 0, r.Count)
}

func TestLookupPrebuilt(t *testing.T) {
	tab := BuildLookup(fibA)
	r := NewCollector(0)
	Lookup{Table: tab}.Intersect(fibA, fibB, r)
	assert.Equal(t, PostingList{2, 8}, r.Rows)

	// a wide range costs one bit per value
	assert.Equal(t, 125000, LookupBytes(PostingList{0, 999999}))
}
