package strategy

import (
	"context"

	"github.com/dshills/codechunk/pkg/types"
)

// FunctionStrategy cuts at top-level declaration boundaries found by the
// structural scan, without needing a syntax tree. It is the preferred
// strategy for test files and the usual fallback when the AST strategy has
// no tree to work with.
type FunctionStrategy struct{}

// NewFunctionStrategy creates a declaration-boundary strategy.
func NewFunctionStrategy() *FunctionStrategy {
	return &FunctionStrategy{}
}

// Descriptor returns the strategy's capability descriptor.
func (s *FunctionStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         NameFunction,
		RequiresAST:  false,
		Languages:    []string{"go", "javascript", "typescript", "python", "rust", "java", "c", "cpp"},
		BasePriority: 2,
		Complexity:   types.ComplexityModerate,
	}
}

// Split cuts the content at lines that open a top-level declaration. Nested
// declarations stay inside their enclosing chunk because only zero-depth
// lines qualify.
func (s *FunctionStrategy) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	lines := sc.Lines()
	var cuts []int
	depth := 0
	for i, line := range lines {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isDeclarationLine(line, sc.Language, depth) {
			cuts = append(cuts, i+1)
		}
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}
	return assemble(sc, opts, cuts, NameFunction), nil
}
