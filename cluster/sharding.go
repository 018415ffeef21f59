package cluster

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/awesomefly/easyextract/matrix"
)

// LoadShard regenerates the columns of one shard. Columns are dealt to
// shards by col % shards; the result holds them in ascending column order.
func LoadShard(ctx context.Context, spec matrix.Spec, shards, shard int, logger *zap.Logger) (*matrix.Matrix, error) {
	if shard < 0 || shard >= max(shards, 1) {
		return nil, errors.Wrapf(ErrUnknownShard, "shard %d of %d", shard, shards)
	}

	start := time.Now()
	m, err := matrix.SimulateColumns(ctx, spec, matrix.ShardColumns(spec.NCol, shards, shard))
	if err != nil {
		return nil, errors.Wrapf(err, "load shard %d", shard)
	}
	logger.Info("shard loaded",
		zap.Int("shard", shard),
		zap.Int("columns", m.NCol()),
		zap.Int("entries", m.NNZ()),
		zap.Duration("elapsed", time.Since(start)))
	return m, nil
}
