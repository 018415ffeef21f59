package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/awesomefly/easyextract/bench"
	"github.com/awesomefly/easyextract/cluster"
	"github.com/awesomefly/easyextract/config"
	"github.com/awesomefly/easyextract/index"
	"github.com/awesomefly/easyextract/matrix"
	"github.com/awesomefly/easyextract/search"
)

// prepare simulates the configured matrix and builds its query.
func (e *env) prepare(ctx context.Context) (*matrix.Matrix, index.PostingList, error) {
	mc, qc := e.conf.Matrix, e.conf.Query
	e.logger.Info("testing matrix",
		zap.Int("nrow", mc.NRow), zap.Int("ncol", mc.NCol), zap.Float64("density", mc.Density))

	start := time.Now()
	m, err := matrix.Simulate(ctx, mc.Spec())
	if err != nil {
		return nil, nil, err
	}
	e.logger.Info("simulated", zap.Int("entries", m.NNZ()), zap.Duration("elapsed", time.Since(start)))

	query := matrix.Query(m.NRow, qc.Start, qc.End, qc.Step)
	e.logger.Info("using query",
		zap.Int("step", qc.Step),
		zap.Int("from", int(qc.Start*float64(m.NRow))),
		zap.Int("to", int(qc.End*float64(m.NRow))),
		zap.Int("rows", len(query)))
	return m, query, nil
}

func (e *env) searchOptions() []search.Option {
	st := e.conf.Strategy
	return []search.Option{
		search.WithStrategy(st.Kind()),
		search.WithSelector(index.Selector{Crossover: st.Crossover}),
		search.WithLookupBudget(st.LookupBudget),
		search.WithWorkers(st.Workers),
		search.WithLogger(e.logger),
		search.WithMetrics(e.metrics),
	}
}

func newBenchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Time every intersection strategy against the linear baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			m, query, err := e.prepare(ctx)
			if err != nil {
				return err
			}
			st := e.conf.Strategy
			reports, _, err := bench.Run(ctx, m, query, bench.Options{
				Repeat:       e.conf.Bench.Repeat,
				Workers:      st.Workers,
				Crossover:    st.Crossover,
				LookupBudget: st.LookupBudget,
				Logger:       e.logger,
				Metrics:      e.metrics,
			})
			if err != nil {
				return err
			}
			return bench.Print(cmd.OutOrStdout(), reports)
		},
	}
}

func newExtractCmd(e *env) *cobra.Command {
	var (
		materialize bool
		exclude     []int
		columns     []int
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the query rows from every column with the configured strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			m, query, err := e.prepare(ctx)
			if err != nil {
				return err
			}
			srh := search.NewSearcher(m, e.searchOptions()...)
			for _, c := range exclude {
				srh.Del(c)
			}

			req := search.Request{Query: query, Materialize: materialize}
			if len(columns) > 0 {
				req.Columns = roaring.New()
				for _, c := range columns {
					if c < 0 {
						return errors.Newf("negative column %d", c)
					}
					req.Columns.Add(uint32(c))
				}
			}
			x, err := srh.Search(ctx, req)
			if err != nil {
				return err
			}
			return printExtraction(cmd, x, materialize)
		},
	}
	cmd.Flags().BoolVar(&materialize, "materialize", false, "Keep matched rows, not only their count")
	cmd.Flags().IntSliceVar(&exclude, "exclude", nil, "Columns to leave out")
	cmd.Flags().IntSliceVar(&columns, "columns", nil, "Only search these columns")
	return cmd
}

func printExtraction(cmd *cobra.Command, x *search.Extraction, materialize bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "collected %d entries in %v\n", x.Count, x.Elapsed)
	fmt.Fprintf(out, "columns %d, excluded %d, skipped %d\n",
		x.Tally.Columns, x.Tally.Excluded, x.Tally.Of(index.StrategySkip))
	for _, s := range index.Strategies() {
		if n := x.Tally.Of(s); n > 0 {
			fmt.Fprintf(out, "  %-9s %d\n", s, n)
		}
	}
	if materialize {
		fmt.Fprintf(out, "columns with matches %d, distinct rows %d\n", len(x.Matches), len(x.Rows))
	}
	return nil
}

func newManagerCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "manager",
		Short: "Run the manager server placing column shards on data servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cluster.NewManagerServer(e.conf, e.logger).Run()
		},
	}
}

func newDataCmd(e *env) *cobra.Command {
	var manager string
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Run a data server answering extraction for its shards",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := *e.conf
			if manager != "" {
				s, err := parseServer(manager)
				if err != nil {
					return err
				}
				conf.Cluster.ManageServer = s
			}

			ctx, cancel := signalContext()
			defer cancel()
			ds := cluster.NewDataServer(&conf, e.logger)
			if err := ds.Join(ctx); err != nil {
				return err
			}
			self := ds.Self()
			e.logger.Info("joined cluster",
				zap.String("host", self.Host),
				zap.Ints("leader", self.LeaderSharding),
				zap.Ints("follower", self.FollowerSharding))
			return ds.Run()
		},
	}
	cmd.Flags().StringVar(&manager, "manager", "", "Manager address host:port, overrides the config")
	return cmd
}

func newQueryCmd(e *env) *cobra.Command {
	var (
		manager     string
		materialize bool
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Extract the query rows across the cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if manager == "" {
				manager = e.conf.Cluster.ManageServer.Address()
			}
			client, err := cluster.NewClient(ctx, manager, e.logger)
			if err != nil {
				return err
			}

			qc := e.conf.Query
			query := matrix.Query(e.conf.Matrix.NRow, qc.Start, qc.End, qc.Step)
			start := time.Now()
			resp, err := client.Extract(ctx, query, materialize)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "collected %d entries in %v\n", resp.Count, time.Since(start))
			if materialize {
				fmt.Fprintf(out, "distinct rows %d\n", len(resp.Rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&manager, "manager", "", "Manager address host:port, overrides the config")
	cmd.Flags().BoolVar(&materialize, "materialize", false, "Also return the distinct matched rows")
	return cmd
}

func parseServer(addr string) (config.Server, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return config.Server{}, errors.Wrapf(err, "manager address %q", addr)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return config.Server{}, errors.Wrapf(err, "manager port %q", port)
	}
	return config.Server{Host: host, Port: p}, nil
}
