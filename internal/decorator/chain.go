package decorator

import (
	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// Chain composes the decorators around a base strategy in the fixed nesting
// order cache, overlap, monitor, base (outside in). It is built fresh per
// execution attempt; the cache and stats instances are the shared ones owned
// by the engine.
//
// The ordering is load-bearing: the monitor sits inside the cache so hits
// record no execution, and the cache sits outside overlap so cached entries
// are the final post-overlap chunks.
func Chain(base strategy.Strategy, cache *Cache, stats *priority.Stats, opts types.ChunkingOptions) strategy.Strategy {
	s := base
	if stats != nil {
		s = WithMonitor(s, stats)
	}
	s = WithOverlap(s)
	if opts.EnableCaching && cache != nil {
		s = WithCache(s, cache)
	}
	return s
}
