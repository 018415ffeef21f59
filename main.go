// Command easyextract extracts a set of rows from every column of a sparse
// matrix, comparing the intersection strategies or serving column shards
// over RPC.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/awesomefly/easyextract/config"
	"github.com/awesomefly/easyextract/logutil"
	"github.com/awesomefly/easyextract/metrics"
)

// env is what every subcommand starts from.
type env struct {
	conf    *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "easyextract",
		Short:         "Extract rows from the columns of a sparse matrix",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.load(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logutil.New(conf.Log)
			if err != nil {
				return err
			}
			e.conf, e.logger = conf, logger
			e.metrics = metrics.New("easyextract")

			if opts.metricsAddr != "" {
				if err := serveMetrics(opts.metricsAddr, e.metrics, logger); err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	opts.bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newBenchCmd(e),
		newExtractCmd(e),
		newManagerCmd(e),
		newDataCmd(e),
		newQueryCmd(e),
	)
	return rootCmd
}

func serveMetrics(addr string, m *metrics.Metrics, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := m.Register(reg); err != nil {
		return errors.Wrap(err, "register metrics")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
