package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dshills/codechunk/internal/guard"
	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStrategy is a scriptable strategy for coordinator tests.
type fakeStrategy struct {
	name  string
	langs []string
	split func(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error)
}

func (f *fakeStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         f.name,
		Languages:    f.langs,
		BasePriority: 5,
		Complexity:   types.ComplexityModerate,
	}
}

func (f *fakeStrategy) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	return f.split(ctx, sc, opts)
}

func succeed(ctx context.Context, sc *types.StrategyContext, _ types.ChunkingOptions) ([]types.CodeChunk, error) {
	return []types.CodeChunk{types.NewCodeChunk(sc.FilePath, sc.Content, 1, len(sc.Lines()), sc.Language)}, nil
}

func fail(err error) func(context.Context, *types.StrategyContext, types.ChunkingOptions) ([]types.CodeChunk, error) {
	return func(context.Context, *types.StrategyContext, types.ChunkingOptions) ([]types.CodeChunk, error) {
		return nil, err
	}
}

// recordingSink captures coordinator events in order.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingSink) StrategySelected(_, strategy string) {
	r.add("selected:" + strategy)
}

func (r *recordingSink) StrategyFailed(_, strategy string, reason types.FailureReason, _ error) {
	r.add(fmt.Sprintf("failed:%s:%s", strategy, reason))
}

func (r *recordingSink) FallbackTriggered(_, failed, next string) {
	r.add(fmt.Sprintf("fallback:%s->%s", failed, next))
}

func (r *recordingSink) GuardDegraded(_ string, state guard.State) {
	r.add("degraded:" + state.String())
}

func defaultTables() priority.Tables {
	return priority.Tables{Default: map[string]int{
		strategy.NameAST:      1,
		strategy.NameFunction: 2,
		strategy.NameMarkdown: 2,
		strategy.NameXML:      2,
		strategy.NameSemantic: 3,
		strategy.NameBracket:  4,
		strategy.NameLine:     10,
	}}
}

func newDefaultEngine(opts ...Option) *Engine {
	registry := strategy.NewDefaultRegistry()
	priorities := priority.NewManager(priority.Config{Tables: defaultTables()}, nil, registry)
	return New(registry, priorities, opts...)
}

func newFakeEngine(sink Sink, strategies ...strategy.Strategy) *Engine {
	registry := strategy.NewRegistry()
	for _, s := range strategies {
		if err := registry.Register(s); err != nil {
			panic(err)
		}
	}
	priorities := priority.NewManager(priority.Config{}, nil, registry)
	opts := []Option{}
	if sink != nil {
		opts = append(opts, WithSink(sink))
	}
	return New(registry, priorities, opts...)
}

func TestProcess_Success(t *testing.T) {
	e := newDefaultEngine()

	content := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	res, err := e.Process(context.Background(), "main.go", content, "", types.DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "main.go", res.FilePath)
	assert.NotEmpty(t, res.StrategyName)
	require.NotEmpty(t, res.Chunks)
	assert.Equal(t, 1, res.Chunks[0].StartLine)
	for _, c := range res.Chunks {
		assert.NoError(t, c.Validate())
		assert.Equal(t, "go", c.Language)
	}
}

func TestProcess_EmptyFile(t *testing.T) {
	e := newDefaultEngine()

	res, err := e.Process(context.Background(), "empty.go", "", "", types.DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Chunks)
}

func TestProcess_NewlineOnlyFile(t *testing.T) {
	e := newDefaultEngine()

	res, err := e.Process(context.Background(), "blank.txt", "\n", "", types.DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Chunks)
	assert.NoError(t, res.Err)
}

func TestProcess_NoApplicableStrategy(t *testing.T) {
	e := newFakeEngine(nil, &fakeStrategy{name: "md-only", langs: []string{"markdown"}, split: succeed})

	res, err := e.Process(context.Background(), "main.go", "package main\n", "", types.DefaultOptions())

	var noApplicable *types.NoApplicableStrategyError
	require.ErrorAs(t, err, &noApplicable)
	assert.False(t, res.Success)
}

func TestProcess_FallbackSequence(t *testing.T) {
	sink := &recordingSink{}
	flaky := &fakeStrategy{name: "flaky", split: fail(errors.New("boom"))}
	solid := &fakeStrategy{name: "solid", split: succeed}
	e := newFakeEngine(sink, flaky, solid)

	opts := types.DefaultOptions()
	res, err := e.Process(context.Background(), "f.txt", "content\n", "", opts)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "solid", res.StrategyName)

	events := sink.all()
	require.Len(t, events, 3)
	assert.Equal(t, "selected:flaky", events[0])
	assert.Equal(t, "failed:flaky:internal_error", events[1])
	assert.Equal(t, "fallback:flaky->solid", events[2])
}

func TestProcess_RetryBudget(t *testing.T) {
	// Four failing candidates but a budget of two fallback attempts: the
	// initial try plus two retries, never more.
	var calls []string
	failing := func(name string) *fakeStrategy {
		return &fakeStrategy{name: name, split: func(context.Context, *types.StrategyContext, types.ChunkingOptions) ([]types.CodeChunk, error) {
			calls = append(calls, name)
			return nil, errors.New("boom")
		}}
	}
	e := newFakeEngine(nil, failing("a"), failing("b"), failing("c"), failing("d"))

	opts := types.DefaultOptions()
	opts.MaxRetries = 2
	res, err := e.Process(context.Background(), "f.txt", "content\n", "", opts)

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Len(t, calls, 3)

	var exhausted *types.ExhaustedError
	require.ErrorAs(t, res.Err, &exhausted)
	assert.Len(t, exhausted.Attempts, 3)
}

func TestProcess_ExhaustedWhenEverythingFails(t *testing.T) {
	e := newFakeEngine(nil,
		&fakeStrategy{name: "a", split: fail(errors.New("one"))},
		&fakeStrategy{name: "b", split: fail(errors.New("two"))},
	)

	res, err := e.Process(context.Background(), "f.txt", "content\n", "", types.DefaultOptions())

	require.NoError(t, err, "exhaustion is a failed result, not a call error")
	assert.False(t, res.Success)

	var exhausted *types.ExhaustedError
	require.ErrorAs(t, res.Err, &exhausted)
	assert.Equal(t, "a", exhausted.Attempts[0].Strategy)
	assert.Equal(t, "b", exhausted.Attempts[1].Strategy)
}

func TestProcess_FallbackDisabled(t *testing.T) {
	flaky := &fakeStrategy{name: "flaky", split: fail(errors.New("boom"))}
	solid := &fakeStrategy{name: "solid", split: succeed}
	e := newFakeEngine(nil, flaky, solid)

	opts := types.DefaultOptions()
	opts.EnableFallback = false
	res, err := e.Process(context.Background(), "f.txt", "content\n", "", opts)

	require.NoError(t, err)
	assert.False(t, res.Success)

	var exhausted *types.ExhaustedError
	require.ErrorAs(t, res.Err, &exhausted)
	assert.Len(t, exhausted.Attempts, 1)
}

func TestProcess_StrategyTimeout(t *testing.T) {
	sink := &recordingSink{}
	slow := &fakeStrategy{name: "slow", split: func(ctx context.Context, _ *types.StrategyContext, _ types.ChunkingOptions) ([]types.CodeChunk, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	solid := &fakeStrategy{name: "solid", split: succeed}
	e := newFakeEngine(sink, slow, solid)

	opts := types.DefaultOptions()
	opts.StrategyTimeout = 20 * time.Millisecond
	res, err := e.Process(context.Background(), "f.txt", "content\n", "", opts)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "solid", res.StrategyName)
	assert.Contains(t, sink.all(), "failed:slow:timeout")
}

func TestProcess_MalformedChunksAreInternalFailures(t *testing.T) {
	sink := &recordingSink{}
	bad := &fakeStrategy{name: "bad", split: func(_ context.Context, sc *types.StrategyContext, _ types.ChunkingOptions) ([]types.CodeChunk, error) {
		return []types.CodeChunk{{ID: "x", Content: "y", StartLine: 9, EndLine: 2}}, nil
	}}
	solid := &fakeStrategy{name: "solid", split: succeed}
	e := newFakeEngine(sink, bad, solid)

	res, err := e.Process(context.Background(), "f.txt", "content\n", "", types.DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, sink.all(), "failed:bad:internal_error")
}

func TestProcess_ParseMismatchFallsPastAST(t *testing.T) {
	// Only the AST strategy and the terminal line strategy are registered, so
	// the AST strategy wins selection, fails without a tree, and the fallback
	// lands on line.
	registry := strategy.NewRegistry()
	require.NoError(t, registry.Register(strategy.NewASTStrategy()))
	require.NoError(t, registry.Register(strategy.NewLineStrategy()))
	priorities := priority.NewManager(priority.Config{Tables: defaultTables()}, nil, registry)
	sink := &recordingSink{}
	e := New(registry, priorities, WithSink(sink))

	res, err := e.Process(context.Background(), "main.go", "package main\n\nfunc main() {}\n", "", types.DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, strategy.NameLine, res.StrategyName)
	assert.Contains(t, sink.all(), "failed:ast:parse_mismatch")
}

func TestProcess_GuardBlocked(t *testing.T) {
	ballast := make([]byte, 16<<20)

	e := newDefaultEngine(WithGuard(guard.New(guard.Config{HardMemoryLimitMB: 1})))

	res, err := e.Process(context.Background(), "main.go", "package main\n", "", types.DefaultOptions())

	var blocked *types.GuardBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.False(t, res.Success)
	runtime.KeepAlive(ballast)
}

func TestProcess_GuardDegradedForcesMinimalStrategy(t *testing.T) {
	ballast := make([]byte, 16<<20)

	sink := &recordingSink{}
	e := newDefaultEngine(
		WithGuard(guard.New(guard.Config{SoftMemoryLimitMB: 1, HardMemoryLimitMB: 1 << 30})),
		WithSink(sink),
	)

	res, err := e.Process(context.Background(), "main.go", "package main\n\nfunc main() {}\n", "", types.DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, strategy.NameLine, res.StrategyName)
	assert.Contains(t, sink.all(), "degraded:degraded")
	runtime.KeepAlive(ballast)
}

func TestProcess_CallerCancellationLeavesGuardClean(t *testing.T) {
	started := make(chan struct{})
	calls := 0
	hang := &fakeStrategy{name: "hang", split: func(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
		calls++
		if calls == 1 {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return succeed(ctx, sc, opts)
	}}

	registry := strategy.NewRegistry()
	require.NoError(t, registry.Register(hang))
	sink := &recordingSink{}
	e := New(registry, priority.NewManager(priority.Config{}, nil, registry),
		WithSink(sink),
		WithGuard(guard.New(guard.Config{ErrorThreshold: 1, ErrorWindow: time.Minute})),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	res, err := e.Process(ctx, "a.txt", "x\n", "", types.DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Success)

	// A single recorded error would trip the threshold; the canceled attempt
	// must not count, so the next call runs the normal selection path.
	res, err = e.Process(context.Background(), "a.txt", "x\n", "", types.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotContains(t, sink.all(), "degraded:degraded")
}

func TestProcessBatch_PreservesInputOrder(t *testing.T) {
	e := newDefaultEngine(WithWorkers(4))

	var files []FileInput
	for i := 0; i < 40; i++ {
		files = append(files, FileInput{
			Path:    fmt.Sprintf("file%02d.go", i),
			Content: fmt.Sprintf("package p%d\n\nfunc f%d() {}\n", i, i),
		})
	}

	results, err := e.ProcessBatch(context.Background(), files, types.DefaultOptions())

	require.NoError(t, err)
	require.Len(t, results, len(files))
	for i, res := range results {
		assert.Equal(t, files[i].Path, res.FilePath)
		assert.True(t, res.Success)
	}
}

func TestProcessBatch_FailuresStayInTheirSlot(t *testing.T) {
	e := newFakeEngine(nil, &fakeStrategy{name: "md-only", langs: []string{"markdown"}, split: succeed})

	files := []FileInput{
		{Path: "a.md", Content: "# ok\n", Language: "markdown"},
		{Path: "b.go", Content: "package main\n", Language: "go"},
		{Path: "c.md", Content: "# also ok\n", Language: "markdown"},
	}

	results, err := e.ProcessBatch(context.Background(), files, types.DefaultOptions())

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	var noApplicable *types.NoApplicableStrategyError
	assert.ErrorAs(t, results[1].Err, &noApplicable)
	assert.True(t, results[2].Success)
}

func TestProcessBatch_CanceledContext(t *testing.T) {
	e := newDefaultEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ProcessBatch(ctx, []FileInput{{Path: "a.go", Content: "package a\n"}}, types.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_StatsAccumulate(t *testing.T) {
	e := newDefaultEngine()

	content := "package main\n\nfunc main() {}\n"
	for i := 0; i < 3; i++ {
		// Distinct paths defeat the execution cache so every call executes.
		_, err := e.Process(context.Background(), fmt.Sprintf("m%d.go", i), content, "", types.DefaultOptions())
		require.NoError(t, err)
	}

	stats := e.Stats()
	total := int64(0)
	for _, snap := range stats {
		total += snap.Executions
	}
	assert.Equal(t, int64(3), total)
}

func TestProcess_CacheHitServesSecondCall(t *testing.T) {
	e := newDefaultEngine()

	content := strings.Repeat("line of text\n", 50)
	opts := types.DefaultOptions()

	first, err := e.Process(context.Background(), "notes.txt", content, "", opts)
	require.NoError(t, err)
	second, err := e.Process(context.Background(), "notes.txt", content, "", opts)
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)

	// One recorded execution: the second call was served from cache.
	snap := e.Stats()[first.StrategyName]
	assert.Equal(t, int64(1), snap.Executions)
}
