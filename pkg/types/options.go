package types

import (
	"fmt"
	"time"
)

// ChunkingOptions is the caller-supplied configuration bag for one processing
// call. The engine never mutates it.
type ChunkingOptions struct {
	// MaxChunkSize is the upper bound on chunk content length in bytes. A
	// single atomic unit (one line) may unavoidably exceed it.
	MaxChunkSize int

	// MinChunkSize is the lower bound below which adjacent segments are
	// merged when possible.
	MinChunkSize int

	// OverlapSize is the number of characters of trailing context duplicated
	// from the next chunk into the current one. Zero disables overlap.
	OverlapSize int

	EnableCaching  bool
	EnableFallback bool

	// MaxRetries bounds the number of fallback attempts after the initial
	// strategy fails.
	MaxRetries int

	// StrategyTimeout is the per-attempt execution deadline.
	StrategyTimeout time.Duration

	// TotalTimeout bounds the whole select/execute/fallback loop for one file.
	TotalTimeout time.Duration
}

// DefaultOptions returns the options used when the caller passes a zero value.
func DefaultOptions() ChunkingOptions {
	return ChunkingOptions{
		MaxChunkSize:    2000,
		MinChunkSize:    100,
		OverlapSize:     0,
		EnableCaching:   true,
		EnableFallback:  true,
		MaxRetries:      3,
		StrategyTimeout: 5 * time.Second,
		TotalTimeout:    30 * time.Second,
	}
}

// Normalize fills zero fields from defaults and returns the result. The
// receiver is left untouched.
func (o ChunkingOptions) Normalize() ChunkingOptions {
	def := DefaultOptions()
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = def.MaxChunkSize
	}
	if o.MinChunkSize <= 0 {
		o.MinChunkSize = def.MinChunkSize
	}
	if o.MinChunkSize > o.MaxChunkSize {
		o.MinChunkSize = o.MaxChunkSize
	}
	if o.OverlapSize < 0 {
		o.OverlapSize = 0
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.StrategyTimeout <= 0 {
		o.StrategyTimeout = def.StrategyTimeout
	}
	if o.TotalTimeout <= 0 {
		o.TotalTimeout = def.TotalTimeout
	}
	return o
}

// CacheKeyPart returns a canonical encoding of every option that affects
// chunk output, for inclusion in execution cache keys.
func (o ChunkingOptions) CacheKeyPart() string {
	return fmt.Sprintf("max=%d;min=%d;overlap=%d", o.MaxChunkSize, o.MinChunkSize, o.OverlapSize)
}
