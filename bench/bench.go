package bench

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/awesomefly/easyextract/index"
	"github.com/awesomefly/easyextract/matrix"
	"github.com/awesomefly/easyextract/metrics"
	"github.com/awesomefly/easyextract/search"
)

type Options struct {
	Repeat       int
	Workers      int
	Crossover    float64
	LookupBudget int

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Report is the outcome of one strategy.
type Report struct {
	Name      string
	Strategy  index.Strategy
	Collected int
	// Elapsed is the mean over all rounds.
	Elapsed  time.Duration
	Mismatch bool
}

// Case is one strategy under comparison.
type Case struct {
	Name     string
	Strategy index.Strategy
}

// Cases are run in this order, named as on the command line.
var Cases = []Case{
	{"linear", index.StrategyMerge},
	{"binary", index.StrategyBinary},
	{"hybrid", index.StrategyGalloping},
	{"lookup", index.StrategyLookup},
	{"auto", index.StrategyAuto},
}

// Baseline counts the matches of query by merging it with every column,
// without clipping or strategy selection.
func Baseline(m *matrix.Matrix, query index.PostingList) int {
	r := index.NewCounter()
	for _, c := range m.Columns {
		index.Merge{}.Intersect(query, c, r)
	}
	return r.Count
}

// Run times every case against the merge baseline. A case collecting a
// different total is reported and logged, never treated as an error.
func Run(ctx context.Context, m *matrix.Matrix, query index.PostingList, opts Options) ([]Report, int, error) {
	if opts.Repeat <= 0 {
		opts.Repeat = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	total := Baseline(m, query)
	logger.Info("expecting a sum", zap.Int("total", total), zap.Int("query", len(query)),
		zap.Int("nrow", m.NRow), zap.Int("ncol", m.NCol()))

	reports := make([]Report, 0, len(Cases))
	for _, c := range Cases {
		so := []search.Option{
			search.WithStrategy(c.Strategy),
			search.WithSelector(index.Selector{Crossover: opts.Crossover}),
			search.WithLookupBudget(opts.LookupBudget),
			search.WithWorkers(opts.Workers),
			search.WithLogger(logger),
		}
		if opts.Metrics != nil {
			so = append(so, search.WithMetrics(opts.Metrics))
		}
		srh := search.NewSearcher(m, so...)

		rep := Report{Name: c.Name, Strategy: c.Strategy}
		var elapsed time.Duration
		for i := 0; i < opts.Repeat; i++ {
			start := time.Now()
			n, err := srh.Count(ctx, query)
			if err != nil {
				return nil, total, errors.Wrapf(err, "bench %s", c.Name)
			}
			elapsed += time.Since(start)
			if n != total && !rep.Mismatch {
				rep.Mismatch = true
				logger.Warn("different result from "+c.Name+" access",
					zap.Int("collected", n), zap.Int("expected", total))
			}
			rep.Collected = n
		}
		rep.Elapsed = elapsed / time.Duration(opts.Repeat)
		reports = append(reports, rep)
	}
	return reports, total, nil
}

// Print writes reports as an aligned table.
func Print(w io.Writer, reports []Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tcollected\telapsed\tstatus")
	for _, r := range reports {
		status := "ok"
		if r.Mismatch {
			status = "MISMATCH"
		}
		fmt.Fprintf(tw, "%s\t%d\t%v\t%s\n", r.Name, r.Collected, r.Elapsed, status)
	}
	return tw.Flush()
}
