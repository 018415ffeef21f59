package index

import "slices"

// Binary searches column for every row of query. Each search starts where
// the previous one stopped, since both lists ascend.
// O(len(query) * log(len(column))).
type Binary struct{}

func (Binary) Intersect(query, column PostingList, r *Result) {
	end := len(column)
	k := 0
	for _, x := range query {
		if k == end {
			return
		}
		n, found := slices.BinarySearch(column[k:], x)
		k += n
		if found {
			r.add(x)
			k++
		}
	}
}
