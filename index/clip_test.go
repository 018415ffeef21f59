package index

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClip(t *testing.T) {
	sa, sb := Clip(fibA, fibB)
	// fibA [2..14] keeps everything, fibB drops 1 and 21
	assert.Equal(t, Span{Lo: 0, Hi: 7}, sa)
	assert.Equal(t, Span{Lo: 1, Hi: 6}, sb)

	sa, sb = Clip(PostingList{1, 2, 3}, PostingList{100, 200})
	assert.True(t, sa.Empty())
	assert.True(t, sb.Empty())

	sa, sb = Clip(nil, fibB)
	assert.True(t, sa.Empty())
	assert.True(t, sb.Empty())

	// equal ranges are left alone
	sa, sb = Clip(PostingList{1, 5, 9}, PostingList{1, 2, 3, 9})
	assert.Equal(t, Span{Lo: 0, Hi: 3}, sa)
	assert.Equal(t, Span{Lo: 0, Hi: 4}, sb)

	// overlapping ranges with no value in common on one side
	sa, sb = Clip(PostingList{1, 10}, PostingList{5, 6})
	assert.True(t, sa.Empty())
	assert.True(t, sb.Empty())

	// touching at one value
	sa, sb = Clip(PostingList{1, 2, 3}, PostingList{3, 4})
	assert.Equal(t, Span{Lo: 2, Hi: 3}, sa)
	assert.Equal(t, Span{Lo: 0, Hi: 1}, sb)
}

func TestClipProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 300; round++ {
		universe := 1 + rng.Intn(500)
		a := randomList(rng, universe, rng.Float64())
		b := randomList(rng, universe, rng.Float64())
		if round%3 == 0 {
			shift := rng.Intn(universe)
			for k := range a {
				a[k] += shift
			}
		}

		sa, sb := Clip(a, b)
		want := oracle(a, b)
		if len(want) == 0 {
			continue
		}

		// no true match is ever clipped away
		require.False(t, sa.Empty())
		assert.Equal(t, want, oracle(a.Slice(sa), b.Slice(sb)), "round %d", round)

		// clipping to the same window twice changes nothing
		w := Overlap(a, b)
		ca, cb := a.Slice(sa), b.Slice(sb)
		assert.Equal(t, Span{Lo: 0, Hi: len(ca)}, ClipTo(ca, w), "round %d", round)
		assert.Equal(t, Span{Lo: 0, Hi: len(cb)}, ClipTo(cb, w), "round %d", round)

		// clipping again only narrows, and still keeps every match
		sa2, sb2 := Clip(ca, cb)
		assert.LessOrEqual(t, sa2.Len(), len(ca))
		assert.LessOrEqual(t, sb2.Len(), len(cb))
		assert.Equal(t, want, oracle(ca.Slice(sa2), cb.Slice(sb2)), "round %d", round)
	}
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, Span{Lo: 2, Hi: 15}, Overlap(fibA, fibB))
	assert.True(t, Overlap(PostingList{1, 2, 3}, PostingList{100, 200}).Empty())
	assert.True(t, Overlap(nil, fibA).Empty())
	assert.Equal(t, Span{Lo: 3, Hi: 4}, Overlap(PostingList{1, 3}, PostingList{3, 9}))

	assert.Equal(t, Span{Lo: 1, Hi: 3}, ClipTo(fibA, Span{Lo: 3, Hi: 8}))
	assert.Equal(t, Span{Lo: 0, Hi: 7}, ClipTo(fibA, Span{Lo: 0, Hi: 100}))
	assert.True(t, ClipTo(fibA, Span{Lo: 15, Hi: 100}).Empty())
	assert.True(t, ClipTo(fibA, Span{Lo: 5, Hi: 6}).Empty())
	assert.True(t, ClipTo(fibA, Span{}).Empty())
}

func TestSpan(t *testing.T) {
	s := Span{Lo: 3, Hi: 7}
	assert.Equal(t, 4, s.Len())
	assert.False(t, s.Empty())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(7))

	assert.Equal(t, 0, Span{Lo: 5, Hi: 2}.Len())
	assert.True(t, Span{Lo: 5, Hi: 5}.Empty())

	assert.True(t, s.Overlaps(Span{Lo: 6, Hi: 10}))
	assert.False(t, s.Overlaps(Span{Lo: 7, Hi: 10}))
	assert.False(t, s.Overlaps(Span{}))
}
