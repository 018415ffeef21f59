package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awesomefly/easyextract/index"
)

func TestDefault(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())
	assert.Equal(t, 0.1, conf.Matrix.Density)
	assert.Equal(t, 50000, conf.Matrix.NRow)
	assert.Equal(t, 10000, conf.Matrix.NCol)
	assert.Equal(t, int64(1234567), conf.Matrix.Seed)
	assert.Equal(t, Query{Start: 0, End: 1, Step: 10}, conf.Query)
	assert.Equal(t, index.StrategyAuto, conf.Strategy.Kind())
}

func TestInitConfig(t *testing.T) {
	conf, err := InitConfig("example.yaml")
	require.NoError(t, err)

	assert.Equal(t, 10, conf.Cluster.ShardingNum)
	assert.Equal(t, 2, conf.Cluster.ReplicateNum)
	assert.Equal(t, "127.0.0.1:1234", conf.Cluster.ManageServer.Address())
	assert.Len(t, conf.Cluster.DataServer, 2)
	assert.Equal(t, 65536, conf.Strategy.LookupBudget)
	assert.Equal(t, 4, conf.Strategy.Workers)
	assert.Equal(t, 3, conf.Bench.Repeat)

	_, err = InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseMergesDefaults(t *testing.T) {
	conf, err := Parse([]byte("Matrix:\n  NRow: 100\nStrategy:\n  Name: hybrid\n"))
	require.NoError(t, err)
	assert.Equal(t, 100, conf.Matrix.NRow)
	assert.Equal(t, 10000, conf.Matrix.NCol)
	assert.Equal(t, 0.1, conf.Matrix.Density)
	assert.Equal(t, index.StrategyGalloping, conf.Strategy.Kind())
	assert.Equal(t, index.DefaultCrossover, conf.Strategy.Crossover)

	_, err = Parse([]byte("Matrix: [1, 2"))
	assert.Error(t, err)
	_, err = Parse([]byte("Matrix:\n  Rows: 3\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"no rows":        func(c *Config) { c.Matrix.NRow = 0 },
		"no columns":     func(c *Config) { c.Matrix.NCol = -1 },
		"density above":  func(c *Config) { c.Matrix.Density = 1.5 },
		"density below":  func(c *Config) { c.Matrix.Density = -0.1 },
		"zero step":      func(c *Config) { c.Query.Step = 0 },
		"reversed range": func(c *Config) { c.Query.Start, c.Query.End = 0.8, 0.2 },
		"negative start": func(c *Config) { c.Query.Start = -1 },
		"strategy":       func(c *Config) { c.Strategy.Name = "quantum" },
		"crossover":      func(c *Config) { c.Strategy.Crossover = 0 },
		"budget":         func(c *Config) { c.Strategy.LookupBudget = -1 },
		"workers":        func(c *Config) { c.Strategy.Workers = -2 },
		"shards":         func(c *Config) { c.Cluster.ShardingNum = 0 },
		"replicas":       func(c *Config) { c.Cluster.ReplicateNum = 0 },
		"log level":      func(c *Config) { c.Log.Level = "loud" },
		"log format":     func(c *Config) { c.Log.Format = "xml" },
		"repeat":         func(c *Config) { c.Bench.Repeat = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			conf := Default()
			mutate(conf)
			err := conf.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "%v", err)
		})
	}

	// a full density and a single row window are fine
	conf := Default()
	conf.Matrix.Density = 1
	conf.Query.Start, conf.Query.End = 0.5, 0.5
	assert.NoError(t, conf.Validate())
}

func TestParseInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Query:\n  Step: -3\n"), 0o644))
	_, err := InitConfig(path)
	assert.True(t, errors.Is(err, ErrInvalid))
}
