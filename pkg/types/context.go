package types

import (
	"path/filepath"
	"strings"
)

// StrategyContext carries everything a strategy needs to segment one file.
// It is built once per file-processing call and treated as immutable for the
// duration of that call, so it is safe to share across selection and every
// execution attempt.
type StrategyContext struct {
	FilePath string
	Language string
	Content  string
	FileSize int

	// HasAST reports whether a syntax tree is available for this file. A
	// parse failure upstream simply leaves HasAST false; it is never an error.
	HasAST  bool
	ASTRoot SyntaxNode

	// Params carries caller-supplied hints that individual strategies may
	// consult. The engine never reads or writes it.
	Params map[string]string

	contentHash string
}

// NewStrategyContext builds an immutable context for one file. The content
// hash is computed eagerly so concurrent readers never race on memoization.
func NewStrategyContext(filePath, content, language string) *StrategyContext {
	return &StrategyContext{
		FilePath:    filePath,
		Language:    strings.ToLower(language),
		Content:     content,
		FileSize:    len(content),
		contentHash: ComputeContentHash(content),
	}
}

// ContentHash returns the SHA-256 hash of the file content.
func (sc *StrategyContext) ContentHash() string {
	if sc.contentHash == "" {
		sc.contentHash = ComputeContentHash(sc.Content)
	}
	return sc.contentHash
}

// Extension returns the lowercase file extension including the leading dot,
// or the empty string when the path has none.
func (sc *StrategyContext) Extension() string {
	return strings.ToLower(filepath.Ext(sc.FilePath))
}

// Lines splits the content into lines. Strategies that work line-wise share
// this rather than re-implementing the split.
func (sc *StrategyContext) Lines() []string {
	return strings.Split(sc.Content, "\n")
}
