// Package fallback builds the ordered retry list consulted after a strategy
// fails. Paths start from the configured per-strategy list, drop candidates
// unsuited to the failure (wrong language, AST strategies after a parse
// failure), top up with the remaining applicable strategies sorted by
// adjusted priority, and always terminate with the minimal line strategy —
// the one candidate with no preconditions.
package fallback

import (
	"sort"

	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// Manager builds fallback paths. It holds only read-mostly collaborators and
// is safe for concurrent use.
type Manager struct {
	registry   *strategy.Registry
	priorities *priority.Manager
	terminal   string
}

// NewManager creates a fallback manager. The terminal strategy defaults to
// the line strategy when empty.
func NewManager(registry *strategy.Registry, priorities *priority.Manager, terminal string) *Manager {
	if terminal == "" {
		terminal = strategy.NameLine
	}
	return &Manager{registry: registry, priorities: priorities, terminal: terminal}
}

// BuildPath returns the ordered strategies to try after failed failed with
// the given reason. The path never contains the failed strategy, never
// contains duplicates, and always ends with the terminal strategy. Built once
// per failure event; not persisted across files.
func (m *Manager) BuildPath(failed string, reason types.FailureReason, sc *types.StrategyContext) []strategy.Strategy {
	included := map[string]bool{failed: true, m.terminal: true}
	var path []strategy.Strategy

	// Configured portion first, in its configured order.
	for _, name := range m.priorities.FallbackPath(failed, reason) {
		s, ok := m.registry.Get(name)
		if !ok || included[name] {
			continue
		}
		if !m.applicable(s, reason, sc) {
			continue
		}
		included[name] = true
		path = append(path, s)
	}

	// Top up with every remaining applicable strategy, best priority first.
	var rest []strategy.Strategy
	for _, s := range m.registry.ForLanguage(sc.Language) {
		name := s.Descriptor().Name
		if included[name] || !m.applicable(s, reason, sc) {
			continue
		}
		included[name] = true
		rest = append(rest, s)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		pi := m.priorities.AdjustedPriority(rest[i].Descriptor().Name, sc)
		pj := m.priorities.AdjustedPriority(rest[j].Descriptor().Name, sc)
		if pi != pj {
			return pi < pj
		}
		return m.registry.Index(rest[i].Descriptor().Name) < m.registry.Index(rest[j].Descriptor().Name)
	})
	path = append(path, rest...)

	// The terminal strategy goes last even when the failed strategy was the
	// terminal itself; a path must always end in a candidate that cannot
	// fail.
	if terminal, ok := m.registry.Get(m.terminal); ok && failed != m.terminal {
		path = append(path, terminal)
	}
	return path
}

// applicable filters candidates that cannot serve this failure: strategies
// that do not support the language, and AST-requiring strategies when the
// syntax tree itself failed.
func (m *Manager) applicable(s strategy.Strategy, reason types.FailureReason, sc *types.StrategyContext) bool {
	d := s.Descriptor()
	if !d.SupportsLanguage(sc.Language) {
		return false
	}
	if reason.IsASTFailure() && d.RequiresAST {
		return false
	}
	if d.RequiresAST && !sc.HasAST {
		return false
	}
	return true
}
