package decorator

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// monitorDecorator records wall-clock execution time and success into the
// shared performance statistics. It sits innermost in the decorator chain so
// cache hits are not counted as executions and overlap time is excluded.
type monitorDecorator struct {
	inner strategy.Strategy
	stats *priority.Stats
}

// WithMonitor wraps a strategy with performance recording.
func WithMonitor(inner strategy.Strategy, stats *priority.Stats) strategy.Strategy {
	return &monitorDecorator{inner: inner, stats: stats}
}

// Descriptor delegates to the wrapped strategy.
func (d *monitorDecorator) Descriptor() types.StrategyDescriptor {
	return d.inner.Descriptor()
}

// Split times the inner execution and records the outcome. Recording is
// independent of caching and overlap and never blocks beyond a brief mutex.
// A failure caused by caller cancellation says nothing about the strategy
// and is not recorded.
func (d *monitorDecorator) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	start := time.Now()
	chunks, err := d.inner.Split(ctx, sc, opts)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return chunks, err
	}
	d.stats.Record(d.inner.Descriptor().Name, time.Since(start), err == nil)
	return chunks, err
}
