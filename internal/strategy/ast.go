package strategy

import (
	"context"

	"github.com/dshills/codechunk/pkg/types"
)

// cancelCheckInterval is how many AST nodes are visited between cooperative
// cancellation checks. Large trees can hold millions of nodes, so the walk
// must observe the coordinator's deadline without checking on every node.
const cancelCheckInterval = 64

// chunkableKinds are the grammar node kinds that open a new chunk, covering
// the tree-sitter grammars the AST provider loads (Go, JavaScript,
// TypeScript, Python, Rust).
var chunkableKinds = map[string]bool{
	// Go
	"function_declaration": true,
	"method_declaration":   true,
	"type_declaration":     true,
	// JavaScript / TypeScript
	"class_declaration":     true,
	"method_definition":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
	// Python
	"function_definition":  true,
	"class_definition":     true,
	"decorated_definition": true,
	// Rust
	"function_item": true,
	"impl_item":     true,
	"struct_item":   true,
	"enum_item":     true,
	"trait_item":    true,
}

// ASTStrategy cuts at syntax-tree declaration boundaries. It requires a tree
// on the context; without one it fails with ErrASTUnavailable, which the
// coordinator treats as a parse mismatch so no other AST strategy is offered
// as a fallback.
type ASTStrategy struct{}

// NewASTStrategy creates an AST-boundary strategy.
func NewASTStrategy() *ASTStrategy {
	return &ASTStrategy{}
}

// Descriptor returns the strategy's capability descriptor.
func (s *ASTStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         NameAST,
		RequiresAST:  true,
		Languages:    []string{"go", "javascript", "typescript", "python", "rust"},
		BasePriority: 1,
		Complexity:   types.ComplexityComplex,
	}
}

// Split walks the tree collecting the start line of every chunkable
// declaration, checking ctx at loop boundaries.
func (s *ASTStrategy) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	if !sc.HasAST || sc.ASTRoot == nil {
		return nil, ErrASTUnavailable
	}

	cuts, err := collectCuts(ctx, sc.ASTRoot)
	if err != nil {
		return nil, err
	}
	return assemble(sc, opts, cuts, NameAST), nil
}

// collectCuts depth-first walks the tree. Descending into chunkable nodes is
// deliberate: methods inside a class produce their own cut points, so the
// class header and each method land in separate chunks.
func collectCuts(ctx context.Context, root types.SyntaxNode) ([]int, error) {
	var cuts []int
	visited := 0

	var walk func(n types.SyntaxNode) error
	walk = func(n types.SyntaxNode) error {
		visited++
		if visited%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if chunkableKinds[n.Kind()] {
			cuts = append(cuts, n.StartLine())
		}
		for i := 0; i < n.NamedChildCount(); i++ {
			if err := walk(n.NamedChild(i)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return cuts, nil
}
