package strategy

import (
	"context"

	"github.com/dshills/codechunk/pkg/types"
)

// LineStrategy is pure fixed-size line splitting with no language
// assumptions. It is the terminal state of every fallback path: it has no
// preconditions and cannot fail short of memory exhaustion.
type LineStrategy struct{}

// NewLineStrategy creates the minimal fallback strategy.
func NewLineStrategy() *LineStrategy {
	return &LineStrategy{}
}

// Descriptor returns the strategy's capability descriptor.
func (s *LineStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         NameLine,
		RequiresAST:  false,
		Languages:    nil, // language-agnostic
		BasePriority: 10,
		Complexity:   types.ComplexitySimple,
	}
}

// Split cuts the content into fixed-size line windows bounded by
// MaxChunkSize.
func (s *LineStrategy) Split(_ context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	// A single cut at line 1; assemble's size bounds do the windowing.
	return assemble(sc, opts, []int{1}, NameLine), nil
}
