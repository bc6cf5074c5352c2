package strategy

import (
	"context"
	"strings"

	"github.com/dshills/codechunk/pkg/types"
)

// SemanticStrategy groups blank-line separated blocks. It suits prose,
// configuration, and code alike, which makes it the usual first fallback for
// structure-aware strategies.
type SemanticStrategy struct{}

// NewSemanticStrategy creates a paragraph-block strategy.
func NewSemanticStrategy() *SemanticStrategy {
	return &SemanticStrategy{}
}

// Descriptor returns the strategy's capability descriptor.
func (s *SemanticStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         NameSemantic,
		RequiresAST:  false,
		Languages:    nil, // language-agnostic
		BasePriority: 3,
		Complexity:   types.ComplexityModerate,
	}
}

// Split cuts at the first non-blank line after each run of blank lines.
func (s *SemanticStrategy) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	lines := sc.Lines()
	var cuts []int
	blank := false
	for i, line := range lines {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		if blank {
			cuts = append(cuts, i+1)
			blank = false
		}
	}
	return assemble(sc, opts, cuts, NameSemantic), nil
}
