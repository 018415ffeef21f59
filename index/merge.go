package index

// Merge walks both lists with two cursors, always advancing the one that
// lags. O(len(a)+len(b)) whatever the overlap.
type Merge struct{}

func (Merge) Intersect(a, b PostingList, r *Result) {
	na, nb := len(a), len(b)
	if na == 0 || nb == 0 {
		return
	}

	var j, k int
	for {
		av, bv := a[j], b[k]
		if av < bv {
			for j++; j < na && a[j] < bv; j++ {
			}
			if j == na {
				return
			}
		} else if av > bv {
			for k++; k < nb && b[k] < av; k++ {
			}
			if k == nb {
				return
			}
		} else {
			r.add(av)
			j++
			k++
			if j == na || k == nb {
				return
			}
		}
	}
}
