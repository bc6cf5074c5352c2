package priority

import (
	"math"
	"strings"
	"time"

	"github.com/dshills/codechunk/pkg/types"
)

// Lowest is the sentinel priority for strategies absent from every table.
// They are never an error; they simply sort last.
const Lowest = 999

// minExecutions is the sample size below which performance adjustment stays
// off, so cold strategies keep their configured priority.
const minExecutions = 10

// defaultGenericPath is the minimal fallback order used when configuration
// supplies none: structural first, then brackets, then the terminal line
// splitter.
var defaultGenericPath = []string{"semantic", "bracket", "line"}

// Tables holds the three layered priority tables. Resolution is
// file-extension override, then language override, then global default.
// Lower integer means higher priority.
type Tables struct {
	// Default maps strategy name to global priority.
	Default map[string]int

	// Language maps language -> strategy name -> priority.
	Language map[string]map[string]int

	// FileType maps lowercase extension (with dot) -> strategy name -> priority.
	FileType map[string]map[string]int
}

// Weights configure the performance score blend. Equal by default.
type Weights struct {
	Speed   float64
	Success float64
}

// DefaultWeights returns equal speed/success weighting.
func DefaultWeights() Weights {
	return Weights{Speed: 1, Success: 1}
}

// DescriptorSource resolves strategy names to capability descriptors. The
// registry satisfies it.
type DescriptorSource interface {
	Descriptor(name string) (types.StrategyDescriptor, bool)
}

// Manager resolves strategy priorities for a context and builds the
// configured portion of fallback paths. Tables are read-only after
// construction; only Stats mutates.
type Manager struct {
	tables        Tables
	weights       Weights
	stats         *Stats
	descriptors   DescriptorSource
	fallbackPaths map[string][]string
	genericPath   []string
}

// Config bundles the Manager's construction inputs.
type Config struct {
	Tables        Tables
	Weights       Weights
	FallbackPaths map[string][]string

	// GenericPath is used when a failed strategy has no configured path.
	GenericPath []string
}

// NewManager creates a priority manager. stats may be shared with the
// engine's decorators; descriptors is consulted to filter AST strategies out
// of fallback paths after parse failures.
func NewManager(cfg Config, stats *Stats, descriptors DescriptorSource) *Manager {
	w := cfg.Weights
	if w.Speed == 0 && w.Success == 0 {
		w = DefaultWeights()
	}
	if stats == nil {
		stats = NewStats()
	}
	generic := cfg.GenericPath
	if len(generic) == 0 {
		generic = defaultGenericPath
	}
	return &Manager{
		tables:        cfg.Tables,
		weights:       w,
		stats:         stats,
		descriptors:   descriptors,
		fallbackPaths: cfg.FallbackPaths,
		genericPath:   generic,
	}
}

// Stats returns the shared statistics tracker.
func (m *Manager) Stats() *Stats {
	return m.stats
}

// Priority resolves the configured priority for a strategy in the given
// context: file-extension table, then language table, then global default,
// then the Lowest sentinel. Unknown strategies are not an error.
func (m *Manager) Priority(name string, sc *types.StrategyContext) int {
	if sc != nil {
		if byName, ok := m.tables.FileType[sc.Extension()]; ok {
			if p, ok := byName[name]; ok {
				return p
			}
		}
		if byName, ok := m.tables.Language[strings.ToLower(sc.Language)]; ok {
			if p, ok := byName[name]; ok {
				return p
			}
		}
	}
	if p, ok := m.tables.Default[name]; ok {
		return p
	}
	return Lowest
}

// AdjustedPriority returns the configured priority lowered by up to 5 points
// of earned performance credit. The adjustment is advisory: it applies only
// during scoring and is never written back into the tables, so priorities
// cannot drift across restarts.
func (m *Manager) AdjustedPriority(name string, sc *types.StrategyContext) int {
	base := m.Priority(name, sc)
	snap := m.stats.Get(name)
	if snap.Executions < minExecutions {
		return base
	}
	adjusted := base - int(math.Floor(m.performanceScore(snap)*5))
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted
}

// performanceScore blends normalized speed and success rate into [0,1].
func (m *Manager) performanceScore(snap Snapshot) float64 {
	avgMs := float64(snap.AvgTime) / float64(time.Millisecond)
	normalizedSpeed := 1 - math.Min(avgMs/1000, 1)
	return (normalizedSpeed*m.weights.Speed + snap.SuccessRate*m.weights.Success) /
		(m.weights.Speed + m.weights.Success)
}

// FallbackPath returns the configured ordered retry list for a failed
// strategy, or the generic minimal list when none is configured. When the
// failure indicates the syntax tree is unusable, every AST-requiring
// candidate is filtered out: an AST strategy is never offered as a fallback
// for an AST failure.
func (m *Manager) FallbackPath(failed string, reason types.FailureReason) []string {
	path, ok := m.fallbackPaths[failed]
	if !ok {
		path = m.genericPath
	}

	out := make([]string, 0, len(path))
	for _, name := range path {
		if name == failed {
			continue
		}
		if reason.IsASTFailure() && m.requiresAST(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (m *Manager) requiresAST(name string) bool {
	if m.descriptors == nil {
		return false
	}
	d, ok := m.descriptors.Descriptor(name)
	return ok && d.RequiresAST
}
