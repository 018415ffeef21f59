package matrix

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/awesomefly/easyextract/index"
)

// Matrix is a compressed sparse-column matrix holding only the row indices of
// non-zero entries, one ascending PostingList per column.
type Matrix struct {
	NRow    int
	Columns []index.PostingList
}

func (m *Matrix) NCol() int { return len(m.Columns) }

// NNZ is the number of stored entries.
func (m *Matrix) NNZ() int {
	n := 0
	for _, c := range m.Columns {
		n += len(c)
	}
	return n
}

// Spec describes a synthetic matrix. Every entry is non-zero with probability
// Density, independently of every other.
type Spec struct {
	NRow    int
	NCol    int
	Density float64
	Seed    int64
}

func (s Spec) validate() error {
	if s.NRow < 0 || s.NCol < 0 {
		return errors.Newf("invalid matrix shape %d x %d", s.NRow, s.NCol)
	}
	if math.IsNaN(s.Density) {
		return errors.New("density is NaN")
	}
	return nil
}

// ColumnSeed derives the RNG seed of one column, so that any column can be
// regenerated without the others.
func ColumnSeed(seed int64, col int) int64 {
	return seed ^ (int64(col)+1)*1000003
}

// SimulateColumn generates column col of the matrix described by s.
//
// Rather than drawing once per row, it samples the geometric gap between
// consecutive non-zero rows, which costs one draw per stored entry.
func SimulateColumn(s Spec, col int) index.PostingList {
	switch {
	case s.NRow <= 0 || !(s.Density > 0):
		return index.PostingList{}
	case s.Density >= 1:
		pl := make(index.PostingList, s.NRow)
		for r := range pl {
			pl[r] = r
		}
		return pl
	}

	rng := rand.New(rand.NewSource(ColumnSeed(s.Seed, col)))
	logq := math.Log1p(-s.Density)
	pl := make(index.PostingList, 0, int(float64(s.NRow)*s.Density)+1)
	for r := -1; ; {
		// 1 - Float64() lies in (0, 1], so the log is finite
		gap := math.Floor(math.Log(1-rng.Float64()) / logq)
		if gap >= float64(s.NRow-r-1) {
			break
		}
		r += int(gap) + 1
		pl = append(pl, r)
	}
	return pl
}

// Simulate generates every column of s, spreading the columns over GOMAXPROCS
// goroutines. The result only depends on s.
func Simulate(ctx context.Context, s Spec) (*Matrix, error) {
	cols := make([]int, s.NCol)
	for c := range cols {
		cols[c] = c
	}
	return SimulateColumns(ctx, s, cols)
}

// SimulateColumns generates only the listed columns of s, in the given order.
func SimulateColumns(ctx context.Context, s Spec, cols []int) (*Matrix, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	for _, col := range cols {
		if col < 0 || col >= s.NCol {
			return nil, errors.Newf("column %d out of range [0, %d)", col, s.NCol)
		}
	}
	m := &Matrix{NRow: s.NRow, Columns: make([]index.PostingList, len(cols))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, col := range cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m.Columns[i] = SimulateColumn(s, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "simulate matrix")
	}
	return m, nil
}

// Query returns the target rows from int(start*nrow) up to but excluding
// int(end*nrow), every step rows. start and end are fractions of nrow.
func Query(nrow int, start, end float64, step int) index.PostingList {
	if step <= 0 {
		step = 1
	}
	lo := max(int(start*float64(nrow)), 0)
	hi := min(int(end*float64(nrow)), nrow)
	if lo >= hi {
		return index.PostingList{}
	}

	q := make(index.PostingList, 0, (hi-lo+step-1)/step)
	for r := lo; r < hi; r += step {
		q = append(q, r)
	}
	return q
}
