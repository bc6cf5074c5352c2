package types

import "strings"

// Complexity classifies how expensive a strategy is relative to input size.
// The selector uses it to bias cheap strategies toward small files and
// structure-aware strategies toward large ones.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// StrategyDescriptor is a strategy's capability descriptor. Descriptors are
// registered once at startup and immutable thereafter.
type StrategyDescriptor struct {
	Name        string
	RequiresAST bool

	// Languages lists the languages the strategy has first-class support for.
	// An empty list means the strategy is language-agnostic.
	Languages []string

	// BasePriority is the configured default priority; lower is better.
	BasePriority int

	Complexity Complexity
}

// SupportsLanguage reports whether the descriptor covers the given language.
// Language-agnostic strategies support everything, including the empty
// language of files that could not be classified.
func (d StrategyDescriptor) SupportsLanguage(lang string) bool {
	if len(d.Languages) == 0 {
		return true
	}
	lang = strings.ToLower(lang)
	for _, l := range d.Languages {
		if strings.ToLower(l) == lang {
			return true
		}
	}
	return false
}

// MatchesLanguage reports an exact (non-wildcard) language match, used for
// the selector's language bonus. Language-agnostic strategies never match
// exactly.
func (d StrategyDescriptor) MatchesLanguage(lang string) bool {
	if len(d.Languages) == 0 {
		return false
	}
	return d.SupportsLanguage(lang)
}
