package strategy

import (
	"context"

	"github.com/dshills/codechunk/pkg/types"
)

// BracketStrategy splits at lines where the running bracket balance returns
// to zero, so a chunk never cuts inside an unbalanced run when a balanced
// boundary is available. Oversized balanced runs still split at line
// granularity as a last resort.
type BracketStrategy struct{}

// NewBracketStrategy creates a bracket-balance-aware strategy.
func NewBracketStrategy() *BracketStrategy {
	return &BracketStrategy{}
}

// Descriptor returns the strategy's capability descriptor.
func (s *BracketStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         NameBracket,
		RequiresAST:  false,
		Languages:    []string{"go", "javascript", "typescript", "java", "c", "cpp", "rust", "json"},
		BasePriority: 4,
		Complexity:   types.ComplexityModerate,
	}
}

// Split accumulates lines until MaxChunkSize, cutting at the most recent
// balanced boundary.
func (s *BracketStrategy) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	lines := sc.Lines()
	n := effectiveLineCount(lines)

	var cuts []int
	depth := 0
	size := 0
	lastBalanced := 0 // last line index (1-based) after which depth was zero
	segStart := 1

	for ln := 1; ln <= n; ln++ {
		if ln%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line := lines[ln-1]
		lineSize := len(line) + 1

		if size > 0 && size+lineSize > opts.MaxChunkSize && lastBalanced >= segStart {
			cuts = append(cuts, lastBalanced+1)
			size = spanSize(lines, lastBalanced+1, ln-1) + 1
			segStart = lastBalanced + 1
		}
		size += lineSize

		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '{', '(', '[':
				depth++
			case '}', ')', ']':
				if depth > 0 {
					depth--
				}
			}
		}
		if depth == 0 {
			lastBalanced = ln
		}
	}
	return assemble(sc, opts, cuts, NameBracket), nil
}
