package index

import (
	"github.com/bits-and-blooms/bitset"
)

// LookupTable is a presence bitset over the value range of one PostingList,
// usually the query. It is never modified after BuildLookup and may be shared
// by any number of goroutines.
type LookupTable struct {
	offset  int
	size    uint
	present *bitset.BitSet
}

// BuildLookup marks every row of pl in a bitset spanning [pl.Front(), pl.Back()].
func BuildLookup(pl PostingList) *LookupTable {
	t := &LookupTable{}
	if len(pl) == 0 {
		t.present = bitset.New(0)
		return t
	}

	t.offset = pl[0]
	t.size = uint(pl[len(pl)-1]-pl[0]) + 1
	t.present = bitset.New(t.size)
	for _, v := range pl {
		t.present.Set(uint(v - t.offset))
	}
	return t
}

// LookupBytes is the memory BuildLookup would allocate for pl.
func LookupBytes(pl PostingList) int {
	if len(pl) == 0 {
		return 0
	}
	return wordBytes(uint(pl[len(pl)-1]-pl[0]) + 1)
}

func wordBytes(bits uint) int {
	return int((bits+63)/64) * 8
}

// Bytes is the memory held by the bitset.
func (t *LookupTable) Bytes() int { return wordBytes(t.size) }

// Range is the value range covered by the table.
func (t *LookupTable) Range() Span {
	return Span{Lo: t.offset, Hi: t.offset + int(t.size)}
}

// Len is the number of rows present.
func (t *LookupTable) Len() int { return int(t.present.Count()) }

// Contains reports whether v was in the source list. Values outside the
// table's range wrap to a large unsigned offset and fail the bound check
// before the bitset is touched.
func (t *LookupTable) Contains(v int) bool {
	i := uint(v - t.offset)
	return i < t.size && t.present.Test(i)
}

// Probe reports every row of column present in the table.
func (t *LookupTable) Probe(column PostingList, r *Result) {
	for _, x := range column {
		if t.Contains(x) {
			r.add(x)
		}
	}
}

// Lookup intersects through a presence table. A nil Table is built from
// query on every call; a prebuilt Table must have been built from query.
type Lookup struct {
	Table *LookupTable
}

func (l Lookup) Intersect(query, column PostingList, r *Result) {
	t := l.Table
	if t == nil {
		if len(query) == 0 {
			return
		}
		t = BuildLookup(query)
	}
	t.Probe(column, r)
}
