package strategy

import (
	"context"
	"strings"

	"github.com/dshills/codechunk/pkg/types"
)

// MarkdownStrategy splits at heading boundaries so each chunk holds a
// coherent document section. Selected by direct trigger for .md files; the
// choice is a format decision, not a scoring heuristic.
type MarkdownStrategy struct{}

// NewMarkdownStrategy creates a heading-based strategy.
func NewMarkdownStrategy() *MarkdownStrategy {
	return &MarkdownStrategy{}
}

// Descriptor returns the strategy's capability descriptor.
func (s *MarkdownStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         NameMarkdown,
		RequiresAST:  false,
		Languages:    []string{"markdown"},
		BasePriority: 2,
		Complexity:   types.ComplexityModerate,
	}
}

// Split cuts at ATX heading lines outside fenced code blocks.
func (s *MarkdownStrategy) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	lines := sc.Lines()
	var cuts []int
	inFence := false
	for i, line := range lines {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if isHeading(trimmed) {
			cuts = append(cuts, i+1)
		}
	}
	return assemble(sc, opts, cuts, NameMarkdown), nil
}

// isHeading matches ATX headings: 1-6 hashes followed by a space or end of
// line.
func isHeading(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	hashes := 0
	for hashes < len(trimmed) && trimmed[hashes] == '#' {
		hashes++
	}
	if hashes > 6 {
		return false
	}
	return hashes == len(trimmed) || trimmed[hashes] == ' '
}
