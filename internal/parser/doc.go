// Package parser is the syntax-tree collaborator: a thin adapter from
// tree-sitter grammars to the engine's SyntaxNode view.
//
// Grammars are loaded for Go, JavaScript, TypeScript, Python, and Rust. A
// missing grammar or a parse error is reported to the engine as "no AST
// available" and the file falls through to the non-AST strategies; parsing
// never fails a processing call.
package parser
