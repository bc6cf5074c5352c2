package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/codechunk/internal/decorator"
	"github.com/dshills/codechunk/internal/fallback"
	"github.com/dshills/codechunk/internal/guard"
	"github.com/dshills/codechunk/internal/lang"
	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/selector"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// ASTProvider supplies an optional syntax tree for a file. A failed parse is
// a normal "no AST available" condition: the engine swallows the error and
// proceeds without a tree. close releases the underlying tree and may be nil.
type ASTProvider interface {
	Parse(ctx context.Context, content []byte, language string) (root types.SyntaxNode, close func(), err error)
}

// FileInput is one file in a batch.
type FileInput struct {
	Path     string
	Content  string
	Language string // empty means detect from the path
}

// Engine is the top-level strategy coordination engine. Construct once,
// share across goroutines; per-file state lives in the coordinator.
type Engine struct {
	registry    *strategy.Registry
	priorities  *priority.Manager
	selector    *selector.Selector
	fallback    *fallback.Manager
	stats       *priority.Stats
	cache       *decorator.Cache
	guard       *guard.Coordinator
	sink        Sink
	parser      ASTProvider
	minimalName string
	workers     int
}

// Option configures the engine at construction.
type Option func(*Engine)

// WithSink installs an event sink. Defaults to NopSink.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithASTProvider installs the syntax-tree collaborator. Without one, every
// file processes with HasAST false.
func WithASTProvider(p ASTProvider) Option {
	return func(e *Engine) { e.parser = p }
}

// WithGuard replaces the default guard coordinator.
func WithGuard(g *guard.Coordinator) Option {
	return func(e *Engine) {
		if g != nil {
			e.guard = g
		}
	}
}

// WithCache replaces the default execution cache.
func WithCache(c *decorator.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithWorkers sets the batch worker pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSelectorConfig replaces the default direct-trigger tables.
func WithSelectorConfig(cfg selector.Config) Option {
	return func(e *Engine) {
		e.selector = selector.New(e.registry, e.priorities, cfg)
	}
}

// New creates an engine over a registry and priority manager. The priority
// manager's statistics tracker is shared with the monitoring decorator so
// recorded executions feed back into adjusted priorities.
func New(registry *strategy.Registry, priorities *priority.Manager, opts ...Option) *Engine {
	e := &Engine{
		registry:    registry,
		priorities:  priorities,
		stats:       priorities.Stats(),
		cache:       decorator.NewCache(0, 0),
		guard:       guard.New(guard.DefaultConfig()),
		sink:        NopSink{},
		minimalName: strategy.NameLine,
		workers:     4,
	}
	e.selector = selector.New(registry, priorities, selector.DefaultConfig())
	e.fallback = fallback.NewManager(registry, priorities, e.minimalName)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats returns a snapshot of per-strategy performance statistics.
func (e *Engine) Stats() map[string]priority.Snapshot {
	return e.stats.All()
}

// Process chunks a single file. An empty language is detected from the path.
// The returned error is non-nil only for *types.NoApplicableStrategyError
// and *types.GuardBlockedError; all strategy-level failures surface as a
// result with Success false.
func (e *Engine) Process(ctx context.Context, filePath, content, language string, opts types.ChunkingOptions) (types.ProcessingResult, error) {
	opts = opts.Normalize()
	if language == "" {
		language = lang.Detect(filePath)
	}

	sc := types.NewStrategyContext(filePath, content, language)
	if release := e.attachAST(ctx, sc); release != nil {
		defer release()
	}

	c := &coordinator{engine: e, sc: sc, opts: opts}
	return c.run(ctx)
}

// ProcessBatch fans files out over a bounded worker pool. The result order
// matches the input order even though completion order does not. Individual
// file failures (including guard blocks) land in their slot; the returned
// error is non-nil only when ctx is canceled.
func (e *Engine) ProcessBatch(ctx context.Context, files []FileInput, opts types.ChunkingOptions) ([]types.ProcessingResult, error) {
	results := make([]types.ProcessingResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Process(gctx, f.Path, f.Content, f.Language, opts)
			if err != nil {
				res.FilePath = f.Path
				res.Success = false
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// attachAST asks the provider for a tree when one is configured and returns
// the tree's release func, or nil. Parse failures leave HasAST false; they
// are never errors.
func (e *Engine) attachAST(ctx context.Context, sc *types.StrategyContext) func() {
	if e.parser == nil || sc.Content == "" {
		return nil
	}
	root, release, err := e.parser.Parse(ctx, []byte(sc.Content), sc.Language)
	if err != nil || root == nil {
		if release != nil {
			release()
		}
		return nil
	}
	sc.HasAST = true
	sc.ASTRoot = root
	return release
}
