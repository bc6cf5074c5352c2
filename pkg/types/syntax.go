package types

// SyntaxNode is the minimal view of a parsed syntax tree that chunking
// strategies consume. It decouples the engine from any particular parser;
// only the AST provider adapter knows the concrete tree representation.
//
// Line numbers are 1-based. Implementations are read-only and safe for use by
// a single file-processing call at a time.
type SyntaxNode interface {
	// Kind returns the grammar node type, e.g. "function_declaration".
	Kind() string

	StartLine() int
	EndLine() int

	NamedChildCount() int
	NamedChild(i int) SyntaxNode
}
