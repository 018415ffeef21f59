package main

import (
	"github.com/spf13/pflag"

	"github.com/awesomefly/easyextract/config"
)

// options mirrors the settings that may be given on the command line. A
// flag only overrides the config file when it was set explicitly.
type options struct {
	configPath string

	density float64
	nrow    int
	ncol    int
	seed    int64

	start float64
	end   float64
	step  int

	strategy     string
	workers      int
	crossover    float64
	lookupBudget int
	repeat       int

	host string
	port int

	logLevel    string
	metricsAddr string
}

func (o *options) bind(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringVar(&o.configPath, "config", "", "YAML config file")

	fs.Float64VarP(&o.density, "density", "d", def.Matrix.Density, "Density of the simulated sparse matrix")
	fs.IntVarP(&o.nrow, "nrow", "r", def.Matrix.NRow, "Number of rows")
	fs.IntVarP(&o.ncol, "ncol", "c", def.Matrix.NCol, "Number of columns")
	fs.Int64Var(&o.seed, "seed", def.Matrix.Seed, "Seed of the simulated matrix")

	fs.Float64Var(&o.start, "start", def.Query.Start, "Start of the extraction, as a fraction of the number of rows")
	fs.Float64Var(&o.end, "end", def.Query.End, "End of the extraction, as a fraction of the number of rows")
	fs.IntVar(&o.step, "step", def.Query.Step, "Step size of the extraction, in terms of number of rows")

	fs.StringVar(&o.strategy, "strategy", def.Strategy.Name, "auto, merge (linear), binary, galloping (hybrid) or lookup")
	fs.IntVar(&o.workers, "workers", def.Strategy.Workers, "Columns searched concurrently")
	fs.Float64Var(&o.crossover, "crossover", def.Strategy.Crossover, "Factor on small*log2(big) past which searching beats merging")
	fs.IntVar(&o.lookupBudget, "lookup-budget", def.Strategy.LookupBudget, "Bytes allowed for a query presence table, 0 disables it")
	fs.IntVar(&o.repeat, "repeat", def.Bench.Repeat, "Rounds per strategy in bench")

	fs.StringVar(&o.host, "host", def.Server.Host, "Listen host of manager and data servers")
	fs.IntVar(&o.port, "port", def.Server.Port, "Listen port of manager and data servers")

	fs.StringVar(&o.logLevel, "log-level", def.Log.Level, "debug, info, warn or error")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

// load reads the config file, if any, then applies the flags that were set.
func (o *options) load(fs *pflag.FlagSet) (*config.Config, error) {
	conf := config.Default()
	if o.configPath != "" {
		var err error
		if conf, err = config.InitConfig(o.configPath); err != nil {
			return nil, err
		}
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("density", func() { conf.Matrix.Density = o.density })
	set("nrow", func() { conf.Matrix.NRow = o.nrow })
	set("ncol", func() { conf.Matrix.NCol = o.ncol })
	set("seed", func() { conf.Matrix.Seed = o.seed })
	set("start", func() { conf.Query.Start = o.start })
	set("end", func() { conf.Query.End = o.end })
	set("step", func() { conf.Query.Step = o.step })
	set("strategy", func() { conf.Strategy.Name = o.strategy })
	set("workers", func() { conf.Strategy.Workers = o.workers })
	set("crossover", func() { conf.Strategy.Crossover = o.crossover })
	set("lookup-budget", func() { conf.Strategy.LookupBudget = o.lookupBudget })
	set("repeat", func() { conf.Bench.Repeat = o.repeat })
	set("host", func() { conf.Server.Host = o.host })
	set("port", func() { conf.Server.Port = o.port })
	set("log-level", func() { conf.Log.Level = o.logLevel })

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}
