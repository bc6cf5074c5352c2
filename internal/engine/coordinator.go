package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/codechunk/internal/decorator"
	"github.com/dshills/codechunk/internal/guard"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// coordinator runs the per-file state machine: select, execute with timeout,
// and on failure walk the fallback path until success or exhaustion. One
// coordinator instance serves one file-processing call.
type coordinator struct {
	engine *Engine
	sc     *types.StrategyContext
	opts   types.ChunkingOptions

	attempts []types.AttemptFailure
}

// run drives the state machine to a terminal result. Only
// *types.NoApplicableStrategyError and *types.GuardBlockedError surface as
// the error return; every strategy-level failure becomes a failed result.
func (c *coordinator) run(ctx context.Context) (types.ProcessingResult, error) {
	start := time.Now()

	// A file with no chunkable lines (empty, or a lone trailing newline) is
	// an explicitly-allowed empty result, not a strategy failure.
	if c.sc.Content == "" || c.sc.Content == "\n" {
		return types.ProcessingResult{
			FilePath:      c.sc.FilePath,
			Success:       true,
			ExecutionTime: time.Since(start),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.TotalTimeout)
	defer cancel()

	first, err := c.pickInitial()
	if err != nil {
		return types.ProcessingResult{FilePath: c.sc.FilePath, Err: err}, err
	}
	c.engine.sink.StrategySelected(c.sc.FilePath, first.Descriptor().Name)

	chunks, failure := c.attempt(ctx, first)
	if failure == nil {
		return c.success(first, chunks, start), nil
	}

	// Fallback loop. The path is built once, from the first failure.
	if c.opts.EnableFallback {
		path := c.engine.fallback.BuildPath(first.Descriptor().Name, failure.Reason, c.sc)
		for _, next := range path {
			if len(c.attempts) > c.opts.MaxRetries {
				break
			}
			if ctx.Err() != nil {
				break
			}
			c.engine.sink.FallbackTriggered(c.sc.FilePath, c.attempts[len(c.attempts)-1].Strategy, next.Descriptor().Name)
			chunks, failure = c.attempt(ctx, next)
			if failure == nil {
				return c.success(next, chunks, start), nil
			}
		}
	}

	exhausted := &types.ExhaustedError{FilePath: c.sc.FilePath, Attempts: c.attempts}
	return types.ProcessingResult{
		FilePath:      c.sc.FilePath,
		Success:       false,
		ExecutionTime: time.Since(start),
		Err:           exhausted,
	}, nil
}

// pickInitial consults the guard, then either forces the minimal fallback
// strategy (degraded) or asks the selector (ok).
func (c *coordinator) pickInitial() (strategy.Strategy, error) {
	switch state := c.engine.guard.Check(); state {
	case guard.StateBlocked:
		return nil, &types.GuardBlockedError{Detail: "memory headroom below emergency threshold"}
	case guard.StateDegraded:
		c.engine.sink.GuardDegraded(c.sc.FilePath, state)
		if minimal, ok := c.engine.registry.Get(c.engine.minimalName); ok {
			return minimal, nil
		}
	}
	return c.engine.selector.Select(c.sc)
}

// attempt executes one independently-decorated, independently-timed try.
// Failures are recorded into the attempt history and, unless the caller
// canceled, the guard's error window.
func (c *coordinator) attempt(ctx context.Context, s strategy.Strategy) ([]types.CodeChunk, *types.AttemptFailure) {
	name := s.Descriptor().Name
	decorated := decorator.Chain(s, c.engine.cache, c.engine.stats, c.opts)

	chunks, err := runWithDeadline(ctx, decorated, c.sc, c.opts)
	if err == nil {
		err = validateChunks(chunks)
	}
	if err == nil {
		return chunks, nil
	}

	failure := types.AttemptFailure{Strategy: name, Reason: classify(err), Err: err}
	c.attempts = append(c.attempts, failure)
	if !callerCanceled(ctx, err) {
		c.engine.guard.RecordError()
	}
	c.engine.sink.StrategyFailed(c.sc.FilePath, name, failure.Reason, err)
	return nil, &failure
}

// callerCanceled reports whether a failed attempt ended because the caller's
// context was canceled, as opposed to the strategy itself failing or running
// past its deadline. Such failures say nothing about the strategy and stay
// out of the guard's error window.
func callerCanceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) && errors.Is(ctx.Err(), context.Canceled)
}

// runWithDeadline races the strategy against the per-attempt timeout. The
// timeout is enforced here, not inside the strategy: an overrunning attempt
// is abandoned (its goroutine finishes into a buffered channel and is
// collected), never forcibly killed, so the worker pool is never blocked by
// a runaway strategy.
func runWithDeadline(ctx context.Context, s strategy.Strategy, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	actx, cancel := context.WithTimeout(ctx, opts.StrategyTimeout)
	defer cancel()

	type outcome struct {
		chunks []types.CodeChunk
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		chunks, err := s.Split(actx, sc, opts)
		done <- outcome{chunks: chunks, err: err}
	}()

	select {
	case o := <-done:
		return o.chunks, o.err
	case <-actx.Done():
		return nil, actx.Err()
	}
}

// validateChunks rejects malformed strategy output: an empty chunk list for
// non-empty input, or any inverted line range.
func validateChunks(chunks []types.CodeChunk) error {
	if len(chunks) == 0 {
		return errors.New("strategy produced no chunks")
	}
	for i := range chunks {
		if chunks[i].StartLine > chunks[i].EndLine {
			return errors.New("chunk has start line after end line")
		}
	}
	return nil
}

// classify maps an attempt error onto the failure taxonomy.
func classify(err error) types.FailureReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return types.ReasonTimeout
	case errors.Is(err, strategy.ErrASTUnavailable):
		return types.ReasonParseMismatch
	default:
		return types.ReasonInternal
	}
}

func (c *coordinator) success(s strategy.Strategy, chunks []types.CodeChunk, start time.Time) types.ProcessingResult {
	return types.ProcessingResult{
		FilePath:      c.sc.FilePath,
		StrategyName:  s.Descriptor().Name,
		Chunks:        chunks,
		ExecutionTime: time.Since(start),
		Success:       true,
	}
}
