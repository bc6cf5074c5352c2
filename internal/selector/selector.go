package selector

import (
	"strings"

	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// Size thresholds for the adaptivity bonus. Files below smallFileBytes favor
// simple strategies; files above largeFileBytes favor structure-aware ones.
const (
	smallFileBytes = 1000
	largeFileBytes = 10000
)

// Scoring weights.
const (
	priorityWeight    = 10
	priorityCeiling   = 12
	languageBonus     = 20
	astBonus          = 15
	smallSimpleBonus  = 12
	smallComplexCost  = 12
	largeComplexBonus = 15
	largeSimpleCost   = 10
	functionBonus     = 10
	functionASTBonus  = 5
	bracketBonus      = 8
	semanticBonus     = 5
	bracketDensityMin = 0.05
)

// Selector scores every applicable registered strategy for a file and
// returns the best one. Direct triggers for specific file types short-circuit
// scoring entirely: those are format decisions, not heuristics.
type Selector struct {
	registry     *strategy.Registry
	priorities   *priority.Manager
	triggers     map[string]string
	testPatterns map[string]string
}

// Config bundles the Selector's construction inputs.
type Config struct {
	// DirectTriggers maps lowercase file extensions to strategy names.
	DirectTriggers map[string]string

	// TestFilePatterns maps file-name suffixes (beyond plain extensions) to
	// strategy names, e.g. "_test.go" to the function strategy.
	TestFilePatterns map[string]string
}

// DefaultConfig returns the built-in trigger tables.
func DefaultConfig() Config {
	return Config{
		DirectTriggers: map[string]string{
			".md":       strategy.NameMarkdown,
			".markdown": strategy.NameMarkdown,
			".xml":      strategy.NameXML,
			".html":     strategy.NameXML,
			".htm":      strategy.NameXML,
			".svg":      strategy.NameXML,
		},
		TestFilePatterns: map[string]string{
			"_test.go": strategy.NameFunction,
			".test.js": strategy.NameFunction,
			".test.ts": strategy.NameFunction,
			".spec.js": strategy.NameFunction,
			".spec.ts": strategy.NameFunction,
		},
	}
}

// New creates a selector over the given registry and priority manager.
func New(registry *strategy.Registry, priorities *priority.Manager, cfg Config) *Selector {
	return &Selector{
		registry:     registry,
		priorities:   priorities,
		triggers:     cfg.DirectTriggers,
		testPatterns: cfg.TestFilePatterns,
	}
}

// Select returns the best strategy for the context. It fails with
// *types.NoApplicableStrategyError only when no registered strategy supports
// the file's language. Given unchanged performance statistics, repeated calls
// over the same input return the same strategy.
func (s *Selector) Select(sc *types.StrategyContext) (strategy.Strategy, error) {
	if direct := s.directTrigger(sc); direct != nil {
		return direct, nil
	}

	candidates := s.registry.ForLanguage(sc.Language)
	if len(candidates) == 0 {
		return nil, &types.NoApplicableStrategyError{FilePath: sc.FilePath, Language: sc.Language}
	}

	structure := strategy.Scan(sc.Content, sc.Language)

	best := candidates[0]
	bestScore := s.score(best, sc, structure)
	for _, cand := range candidates[1:] {
		sc2 := s.score(cand, sc, structure)
		if s.better(cand, sc2, best, bestScore, sc) {
			best = cand
			bestScore = sc2
		}
	}
	return best, nil
}

// directTrigger returns the strategy mandated by a file-type rule, or nil.
// Test-file naming patterns are consulted before plain extensions because
// they are more specific.
func (s *Selector) directTrigger(sc *types.StrategyContext) strategy.Strategy {
	lower := strings.ToLower(sc.FilePath)
	for suffix, name := range s.testPatterns {
		if strings.HasSuffix(lower, suffix) {
			if st, ok := s.registry.Get(name); ok {
				return st
			}
		}
	}
	if name, ok := s.triggers[sc.Extension()]; ok {
		if st, ok := s.registry.Get(name); ok {
			return st
		}
	}
	return nil
}

// score computes the selection score for one candidate. Higher wins.
func (s *Selector) score(cand strategy.Strategy, sc *types.StrategyContext, structure strategy.Structure) int {
	d := cand.Descriptor()
	score := (priorityCeiling - s.priorities.AdjustedPriority(d.Name, sc)) * priorityWeight

	if d.MatchesLanguage(sc.Language) {
		score += languageBonus
	}
	if sc.HasAST && d.RequiresAST {
		score += astBonus
	}

	score += sizeAdaptivity(d, sc.FileSize)
	score += contentAdaptivity(d, structure)
	return score
}

// sizeAdaptivity rewards simple strategies for small files and
// structure-aware strategies for large ones.
func sizeAdaptivity(d types.StrategyDescriptor, fileSize int) int {
	switch {
	case fileSize < smallFileBytes:
		switch d.Complexity {
		case types.ComplexitySimple:
			return smallSimpleBonus
		case types.ComplexityComplex:
			return -smallComplexCost
		}
	case fileSize > largeFileBytes:
		switch d.Complexity {
		case types.ComplexityComplex:
			return largeComplexBonus
		case types.ComplexitySimple:
			return -largeSimpleCost
		}
	}
	return 0
}

// contentAdaptivity adds points when the file's structural profile aligns
// with a strategy's specialty.
func contentAdaptivity(d types.StrategyDescriptor, structure strategy.Structure) int {
	score := 0
	if structure.Functions > 0 {
		switch d.Name {
		case strategy.NameFunction:
			score += functionBonus
		case strategy.NameAST:
			score += functionASTBonus
		}
	}
	if structure.BracketDensity > bracketDensityMin && d.Name == strategy.NameBracket {
		score += bracketBonus
	}
	if structure.Blocks > 1 && d.Name == strategy.NameSemantic {
		score += semanticBonus
	}
	return score
}

// better decides whether the challenger beats the incumbent. Ties break by
// lower adjusted priority, then by registration order, keeping selection
// deterministic.
func (s *Selector) better(challenger strategy.Strategy, challengerScore int, incumbent strategy.Strategy, incumbentScore int, sc *types.StrategyContext) bool {
	if challengerScore != incumbentScore {
		return challengerScore > incumbentScore
	}
	cp := s.priorities.AdjustedPriority(challenger.Descriptor().Name, sc)
	ip := s.priorities.AdjustedPriority(incumbent.Descriptor().Name, sc)
	if cp != ip {
		return cp < ip
	}
	return s.registry.Index(challenger.Descriptor().Name) < s.registry.Index(incumbent.Descriptor().Name)
}
