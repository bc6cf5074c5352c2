package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	registry := strategy.NewDefaultRegistry()
	priorities := priority.NewManager(priority.Config{
		Tables: priority.Tables{
			Default: map[string]int{
				strategy.NameAST:      1,
				strategy.NameFunction: 2,
				strategy.NameSemantic: 3,
				strategy.NameBracket:  4,
				strategy.NameLine:     10,
			},
		},
		FallbackPaths: map[string][]string{
			strategy.NameAST:      {strategy.NameFunction, strategy.NameSemantic, strategy.NameBracket},
			strategy.NameFunction: {strategy.NameSemantic, strategy.NameBracket},
		},
		GenericPath: []string{strategy.NameSemantic, strategy.NameBracket, strategy.NameLine},
	}, nil, registry)
	return NewManager(registry, priorities, "")
}

func names(path []strategy.Strategy) []string {
	out := make([]string, 0, len(path))
	for _, s := range path {
		out = append(out, s.Descriptor().Name)
	}
	return out
}

func TestBuildPath_ConfiguredOrderThenTerminal(t *testing.T) {
	m := newTestManager(t)
	sc := types.NewStrategyContext("main.go", "package main\n", "go")

	path := m.BuildPath(strategy.NameAST, types.ReasonTimeout, sc)

	got := names(path)
	assert.Equal(t, []string{strategy.NameFunction, strategy.NameSemantic, strategy.NameBracket, strategy.NameLine}, got)
}

func TestBuildPath_NeverContainsFailedOrDuplicates(t *testing.T) {
	m := newTestManager(t)
	sc := types.NewStrategyContext("main.go", "package main\n", "go")

	path := m.BuildPath(strategy.NameFunction, types.ReasonInternal, sc)

	seen := map[string]bool{}
	for _, name := range names(path) {
		assert.NotEqual(t, strategy.NameFunction, name)
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
}

func TestBuildPath_AlwaysTerminatesInLine(t *testing.T) {
	m := newTestManager(t)

	for _, lang := range []string{"go", "python", "markdown", ""} {
		sc := types.NewStrategyContext("f", "content\n", lang)
		path := m.BuildPath(strategy.NameSemantic, types.ReasonInternal, sc)
		got := names(path)
		require.NotEmpty(t, got, "language %q", lang)
		assert.Equal(t, strategy.NameLine, got[len(got)-1], "language %q", lang)
	}
}

func TestBuildPath_FiltersASTAfterParseFailure(t *testing.T) {
	m := newTestManager(t)
	sc := types.NewStrategyContext("main.go", "package main\n", "go")
	sc.HasAST = true

	path := m.BuildPath(strategy.NameFunction, types.ReasonParseMismatch, sc)
	assert.NotContains(t, names(path), strategy.NameAST)
}

func TestBuildPath_FiltersASTWithoutTree(t *testing.T) {
	m := newTestManager(t)
	sc := types.NewStrategyContext("main.go", "package main\n", "go")

	// Timeout failure, but no tree was ever available.
	path := m.BuildPath(strategy.NameFunction, types.ReasonTimeout, sc)
	assert.NotContains(t, names(path), strategy.NameAST)
}

func TestBuildPath_TopsUpWithASTWhenTreeAvailable(t *testing.T) {
	m := newTestManager(t)
	sc := types.NewStrategyContext("main.go", "package main\n", "go")
	sc.HasAST = true

	// function's configured path omits ast; the top-up adds it because the
	// tree is usable and the failure was not AST-related.
	path := m.BuildPath(strategy.NameFunction, types.ReasonTimeout, sc)
	assert.Contains(t, names(path), strategy.NameAST)
}

func TestBuildPath_FiltersUnsupportedLanguages(t *testing.T) {
	m := newTestManager(t)
	sc := types.NewStrategyContext("notes.txt", "some text\n", "")

	path := m.BuildPath(strategy.NameSemantic, types.ReasonInternal, sc)

	got := names(path)
	assert.NotContains(t, got, strategy.NameBracket)
	assert.NotContains(t, got, strategy.NameMarkdown)
	assert.Equal(t, strategy.NameLine, got[len(got)-1])
}

func TestBuildPath_TerminalFailureYieldsEmptyPath(t *testing.T) {
	m := newTestManager(t)
	sc := types.NewStrategyContext("f.txt", "text\n", "")

	// When the terminal strategy itself failed there is nothing left to try.
	path := m.BuildPath(strategy.NameLine, types.ReasonInternal, sc)
	assert.NotContains(t, names(path), strategy.NameLine)
}
