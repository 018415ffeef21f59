package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/cockroachdb/errors"
	"github.com/xtgo/set"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/awesomefly/easyextract/index"
	"github.com/awesomefly/easyextract/matrix"
	"github.com/awesomefly/easyextract/metrics"
)

// columns handed to one worker at a time
const chunkSize = 256

// ColumnMatch holds the matched rows of one column.
type ColumnMatch struct {
	Column int
	Rows   index.PostingList
}

// Request describes one extraction.
type Request struct {
	Query index.PostingList
	// Columns restricts the search; nil means every column.
	Columns *roaring.Bitmap
	// Materialize keeps the matched rows, otherwise only counts are kept.
	Materialize bool
}

// Extraction is the result of one Request.
type Extraction struct {
	Count int
	// Matches lists, by ascending column, every column with at least one
	// match. Only set when materializing.
	Matches []ColumnMatch
	// Rows is the sorted distinct union of matched rows over all columns.
	Rows    index.PostingList
	Tally   metrics.Tally
	Elapsed time.Duration
}

type Option func(*Searcher)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Searcher) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Searcher) { s.metrics = m }
}

// WithWorkers searches n chunks of columns concurrently. n <= 1 is serial.
func WithWorkers(n int) Option {
	return func(s *Searcher) { s.workers = n }
}

func WithStrategy(strategy index.Strategy) Option {
	return func(s *Searcher) { s.strategy = strategy }
}

func WithSelector(selector index.Selector) Option {
	return func(s *Searcher) { s.selector = selector }
}

// WithLookupBudget allows a presence table of up to bytes per query.
func WithLookupBudget(bytes int) Option {
	return func(s *Searcher) { s.budget = bytes }
}

// Searcher extracts query rows from every column of a matrix.
type Searcher struct {
	matrix *matrix.Matrix

	strategy index.Strategy
	selector index.Selector
	budget   int
	workers  int

	lock          sync.RWMutex
	roaringFilter *roaring.Bitmap // deleted columns

	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewSearcher(m *matrix.Matrix, opts ...Option) *Searcher {
	srh := &Searcher{
		matrix:        m,
		roaringFilter: roaring.New(),
		logger:        zap.NewNop(),
		metrics:       metrics.New("easyextract"),
	}
	for _, opt := range opts {
		opt(srh)
	}
	return srh
}

func (srh *Searcher) Matrix() *matrix.Matrix { return srh.matrix }

// Del excludes col from every later search.
func (srh *Searcher) Del(col int) {
	if col < 0 {
		return
	}
	srh.lock.Lock()
	defer srh.lock.Unlock()
	srh.roaringFilter.Add(uint32(col))
}

// Deleted reports whether col was excluded with Del.
func (srh *Searcher) Deleted(col int) bool {
	srh.lock.RLock()
	defer srh.lock.RUnlock()
	return col >= 0 && srh.roaringFilter.Contains(uint32(col))
}

// Session prepares query with the searcher's strategy settings.
func (srh *Searcher) Session(query index.PostingList) *Session {
	return NewSession(query, srh.strategy, srh.selector, srh.budget)
}

// Count returns the number of stored entries in query rows over every column.
func (srh *Searcher) Count(ctx context.Context, query index.PostingList) (int, error) {
	x, err := srh.Search(ctx, Request{Query: query})
	if err != nil {
		return 0, err
	}
	return x.Count, nil
}

// Extract materializes the matches of query in every column.
func (srh *Searcher) Extract(ctx context.Context, query index.PostingList) (*Extraction, error) {
	return srh.Search(ctx, Request{Query: query, Materialize: true})
}

// SearchColumns materializes the matches of query in the listed columns only.
func (srh *Searcher) SearchColumns(ctx context.Context, query index.PostingList, cols *roaring.Bitmap) (*Extraction, error) {
	if cols == nil {
		cols = roaring.New()
	}
	return srh.Search(ctx, Request{Query: query, Columns: cols, Materialize: true})
}

// visit resolves the columns a request touches, in ascending order, and how
// many requested columns were deleted.
func (srh *Searcher) visit(req Request) ([]uint32, int, error) {
	ncol := srh.matrix.NCol()

	cols := req.Columns
	if cols == nil {
		cols = roaring.New()
		cols.AddRange(0, uint64(ncol))
	} else {
		if !cols.IsEmpty() && int(cols.Maximum()) >= ncol {
			return nil, 0, errors.Newf("column %d out of range [0, %d)", cols.Maximum(), ncol)
		}
		cols = cols.Clone()
	}

	srh.lock.RLock()
	excluded := int(cols.AndCardinality(srh.roaringFilter))
	cols.AndNot(srh.roaringFilter)
	srh.lock.RUnlock()

	return cols.ToArray(), excluded, nil
}

// partial is what one chunk of columns contributes.
type partial struct {
	count   int
	matches []ColumnMatch
	tally   metrics.Tally
}

func (srh *Searcher) searchChunk(ctx context.Context, sess *Session, cols []uint32, materialize bool) (partial, error) {
	var p partial
	counter := index.NewCounter()
	for k, c := range cols {
		if k%chunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return p, err
			}
		}
		column := srh.matrix.Columns[c]
		if !materialize {
			p.tally.Add(sess.Intersect(column, counter))
			continue
		}

		r := index.NewCollector(0)
		p.tally.Add(sess.Intersect(column, r))
		if r.Count > 0 {
			p.count += r.Count
			p.matches = append(p.matches, ColumnMatch{Column: int(c), Rows: r.Rows})
		}
	}
	if !materialize {
		p.count = counter.Count
	}
	p.tally.Matches = p.count
	return p, nil
}

// Search runs req over the columns of the matrix, splitting them in chunks
// over the configured number of workers. Results do not depend on the number
// of workers.
func (srh *Searcher) Search(ctx context.Context, req Request) (*Extraction, error) {
	start := time.Now()
	cols, excluded, err := srh.visit(req)
	if err != nil {
		return nil, err
	}
	sess := srh.Session(req.Query)

	nchunk := (len(cols) + chunkSize - 1) / chunkSize
	parts := make([]partial, nchunk)
	if srh.workers <= 1 {
		for i := range parts {
			if parts[i], err = srh.searchChunk(ctx, sess, chunk(cols, i), req.Materialize); err != nil {
				return nil, errors.Wrap(err, "search columns")
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(srh.workers)
		for i := range parts {
			g.Go(func() error {
				var err error
				parts[i], err = srh.searchChunk(gctx, sess, chunk(cols, i), req.Materialize)
				return err
			})
		}
		if err = g.Wait(); err != nil {
			return nil, errors.Wrap(err, "search columns")
		}
	}

	x := reduce(parts, req.Materialize)
	x.Tally.Excluded = excluded
	x.Elapsed = time.Since(start)

	mode := metrics.ModeCount
	if req.Materialize {
		mode = metrics.ModeMaterialize
	}
	srh.metrics.Flush(x.Tally, mode, x.Elapsed)
	srh.logger.Debug("extracted",
		zap.Int("query", len(req.Query)),
		zap.Int("columns", len(cols)),
		zap.Int("excluded", excluded),
		zap.Int("count", x.Count),
		zap.Bool("lookup", sess.Table() != nil),
		zap.Duration("elapsed", x.Elapsed))
	return x, nil
}

func chunk(cols []uint32, i int) []uint32 {
	lo := i * chunkSize
	return cols[lo:min(lo+chunkSize, len(cols))]
}

// reduce sums the chunk counts. Chunks cover ascending column ranges, so
// their matches concatenate in column order; the row union is sorted and
// deduplicated.
func reduce(parts []partial, materialize bool) *Extraction {
	x := &Extraction{}
	n := 0
	for _, p := range parts {
		x.Count += p.count
		x.Tally.Merge(p.tally)
		x.Matches = append(x.Matches, p.matches...)
		n += p.count
	}
	if !materialize {
		return x
	}

	rows := make([]int, 0, n)
	for _, m := range x.Matches {
		rows = append(rows, m.Rows...)
	}
	sort.Ints(rows)
	x.Rows = index.PostingList(rows[:set.Uniq(sort.IntSlice(rows))])
	return x
}
