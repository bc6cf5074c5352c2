package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/dshills/codechunk/pkg/types"
)

// ErrUnsupportedLanguage is returned for languages without a loaded grammar.
// The engine treats it like any parse failure: the file simply processes
// without a syntax tree.
type ErrUnsupportedLanguage struct {
	Language string
}

func (e *ErrUnsupportedLanguage) Error() string {
	return fmt.Sprintf("no tree-sitter grammar for language %q", e.Language)
}

// grammars maps engine language identifiers to tree-sitter grammars.
var grammars = map[string]*sitter.Language{
	"go":         golang.GetLanguage(),
	"javascript": javascript.GetLanguage(),
	"typescript": typescript.GetLanguage(),
	"python":     python.GetLanguage(),
	"rust":       rust.GetLanguage(),
}

// Parser is the AST provider collaborator. It is stateless; a fresh
// tree-sitter parser is created per call because the underlying parser is
// not safe for concurrent use across batch workers.
type Parser struct{}

// New creates an AST provider.
func New() *Parser {
	return &Parser{}
}

// Supported reports whether a grammar is loaded for the language.
func (p *Parser) Supported(language string) bool {
	_, ok := grammars[language]
	return ok
}

// Parse builds a syntax tree for the content. The returned release func
// frees the tree's C-side memory and must be called when processing of the
// file finishes. Any error means "no AST available", never a fatal
// condition.
func (p *Parser) Parse(ctx context.Context, content []byte, language string) (types.SyntaxNode, func(), error) {
	grammar, ok := grammars[language]
	if !ok {
		return nil, nil, &ErrUnsupportedLanguage{Language: language}
	}

	sp := sitter.NewParser()
	sp.SetLanguage(grammar)
	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, nil, err
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, nil, fmt.Errorf("parse produced errors for language %q", language)
	}
	return &node{n: root}, tree.Close, nil
}

// node adapts a tree-sitter node to the engine's SyntaxNode view.
type node struct {
	n *sitter.Node
}

func (a *node) Kind() string {
	return a.n.Type()
}

// StartLine converts tree-sitter's 0-based rows to the engine's 1-based
// lines.
func (a *node) StartLine() int {
	return int(a.n.StartPoint().Row) + 1
}

func (a *node) EndLine() int {
	return int(a.n.EndPoint().Row) + 1
}

func (a *node) NamedChildCount() int {
	return int(a.n.NamedChildCount())
}

func (a *node) NamedChild(i int) types.SyntaxNode {
	return &node{n: a.n.NamedChild(i)}
}
