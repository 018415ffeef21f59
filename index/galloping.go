package index

import "slices"

// Galloping iterates query and moves a cursor through column with
// exponentially growing steps before refining with a binary search.
//
// The cost approaches O(n log(m/n)) for a short query against a long column
// and degrades to roughly linear when the two lists interleave densely.
type Galloping struct{}

func (Galloping) Intersect(query, column PostingList, r *Result) {
	end := len(column)
	if end == 0 {
		return
	}

	k := 0
	for _, limit := range query {
		// Step +0: the cursor is often already at or past limit.
		if v := column[k]; v > limit {
			continue
		} else if v == limit {
			r.add(limit)
			if k++; k == end {
				return
			}
			continue
		}

		// Step +1.
		if k++; k == end {
			return
		}
		if v := column[k]; v > limit {
			continue
		} else if v == limit {
			r.add(limit)
			if k++; k == end {
				return
			}
			continue
		}

		// column[lo] < limit, and column[hi] >= limit unless hi == end.
		lo, hi := k, end
		for step := 2; step < end-lo; step <<= 1 {
			next := lo + step
			if column[next] >= limit {
				hi = next
				break
			}
			lo = next
		}

		if hi < end && column[hi] == limit {
			r.add(limit)
			if k = hi + 1; k == end {
				return
			}
			continue
		}

		n, found := slices.BinarySearch(column[lo+1:hi], limit)
		k = lo + 1 + n
		if found {
			r.add(limit)
			k++
		}
		if k == end {
			return
		}
	}
}
