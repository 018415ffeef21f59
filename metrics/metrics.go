package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/awesomefly/easyextract/index"
)

const (
	ModeCount       = "count"
	ModeMaterialize = "materialize"
)

// Metrics holds the collectors of one extraction process. Children are bound
// once in New so the extraction path never resolves label values.
type Metrics struct {
	decisions *prometheus.CounterVec
	bound     map[index.Strategy]prometheus.Counter

	// Skipped counts columns whose value range missed the query entirely.
	Skipped  prometheus.Counter
	Columns  prometheus.Counter
	Excluded prometheus.Counter
	Matches  prometheus.Counter
	Duration *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "strategy_total",
			Help:      "Total number of column intersections by chosen strategy.",
		}, []string{"strategy"})

	m := &Metrics{
		decisions: decisions,
		bound:     make(map[index.Strategy]prometheus.Counter),
		Columns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "columns_total",
			Help:      "Total number of columns visited.",
		}),
		Excluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "excluded_columns_total",
			Help:      "Total number of columns passed over because they were deleted.",
		}),
		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "matches_total",
			Help:      "Total number of matched entries.",
		}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "extract",
				Name:      "duration_seconds",
				Help:      "Bucketed histogram of whole-query extraction time.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2.0, 20),
			}, []string{"mode"}),
	}
	for _, s := range append(index.Strategies(), index.StrategySkip) {
		m.bound[s] = decisions.WithLabelValues(s.String())
	}
	m.Skipped = m.bound[index.StrategySkip]
	return m
}

// Register adds every collector to r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.decisions, m.Columns, m.Excluded, m.Matches, m.Duration} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Decisions returns the counter of columns executed with s.
func (m *Metrics) Decisions(s index.Strategy) prometheus.Counter {
	if c, ok := m.bound[s]; ok {
		return c
	}
	return m.decisions.WithLabelValues(s.String())
}

// Tally accumulates one worker's decisions without touching shared state.
type Tally struct {
	strategies [8]int
	Columns    int
	Excluded   int
	Matches    int
}

func (t *Tally) Add(d index.Decision) {
	t.Columns++
	if s := int(d.Strategy); s >= 0 && s < len(t.strategies) {
		t.strategies[s]++
	}
}

// Of returns the number of columns recorded with s.
func (t *Tally) Of(s index.Strategy) int {
	if i := int(s); i >= 0 && i < len(t.strategies) {
		return t.strategies[i]
	}
	return 0
}

func (t *Tally) Merge(o Tally) {
	for i, n := range o.strategies {
		t.strategies[i] += n
	}
	t.Columns += o.Columns
	t.Excluded += o.Excluded
	t.Matches += o.Matches
}

// Flush publishes t and the elapsed time of one extraction.
func (m *Metrics) Flush(t Tally, mode string, elapsed time.Duration) {
	for i, n := range t.strategies {
		if n > 0 {
			m.Decisions(index.Strategy(i)).Add(float64(n))
		}
	}
	m.Columns.Add(float64(t.Columns))
	m.Excluded.Add(float64(t.Excluded))
	m.Matches.Add(float64(t.Matches))
	m.Duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}
