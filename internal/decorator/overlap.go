package decorator

import (
	"context"

	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// overlapDecorator duplicates overlapSize characters of the next chunk's
// head onto the current chunk's tail, giving the embedding pipeline trailing
// context. Chunk boundaries never move: only the current chunk's content
// grows, and the chunk ID keeps the pre-overlap identity so overlap does not
// change chunk identity.
type overlapDecorator struct {
	inner strategy.Strategy
}

// WithOverlap wraps a strategy with overlap post-processing.
func WithOverlap(inner strategy.Strategy) strategy.Strategy {
	return &overlapDecorator{inner: inner}
}

// Descriptor delegates to the wrapped strategy.
func (d *overlapDecorator) Descriptor() types.StrategyDescriptor {
	return d.inner.Descriptor()
}

// Split is a pass-through when OverlapSize is zero.
func (d *overlapDecorator) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	chunks, err := d.inner.Split(ctx, sc, opts)
	if err != nil || opts.OverlapSize <= 0 || len(chunks) < 2 {
		return chunks, err
	}

	for i := 0; i < len(chunks)-1; i++ {
		next := chunks[i+1].Content
		n := opts.OverlapSize
		if n > len(next) {
			n = len(next)
		}
		if n > 0 {
			chunks[i].Content = chunks[i].Content + "\n" + next[:n]
		}
	}
	return chunks, nil
}
