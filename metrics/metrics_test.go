package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awesomefly/easyextract/index"
)

func TestFlush(t *testing.T) {
	m := New("test")
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg), "collectors register once")

	var a, b Tally
	a.Add(index.Decision{Strategy: index.StrategyMerge})
	a.Add(index.Decision{Strategy: index.StrategySkip})
	a.Matches = 7
	b.Add(index.Decision{Strategy: index.StrategyBinary})
	b.Add(index.Decision{Strategy: index.StrategyMerge})
	b.Excluded = 2
	a.Merge(b)

	assert.Equal(t, 4, a.Columns)
	assert.Equal(t, 2, a.Of(index.StrategyMerge))
	assert.Equal(t, 0, a.Of(index.Strategy(100)))

	m.Flush(a, ModeCount, 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions(index.StrategyMerge)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions(index.StrategyBinary)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Decisions(index.StrategyGalloping)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Skipped))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Columns))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Excluded))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Matches))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))

	expected := `
# HELP test_extract_strategy_total Total number of column intersections by chosen strategy.
# TYPE test_extract_strategy_total counter
test_extract_strategy_total{strategy="binary"} 1
test_extract_strategy_total{strategy="galloping"} 0
test_extract_strategy_total{strategy="lookup"} 0
test_extract_strategy_total{strategy="merge"} 2
test_extract_strategy_total{strategy="skip"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_extract_strategy_total"))
}
