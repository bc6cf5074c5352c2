// Package engine is the strategy coordination engine's top level: the
// single-file entry point, the batch worker pool, and the per-file execution
// coordinator.
//
// Processing one file walks a small state machine: the guard is consulted
// first (degraded memory or error-rate conditions force the minimal line
// strategy; critical memory pressure blocks outright), the selector picks a
// strategy, and each attempt runs independently decorated under a
// cooperative per-attempt deadline. On failure the fallback manager supplies
// the ordered retry list, and the loop continues until success, retry
// exhaustion, or the total-time budget runs out. Strategy-level errors never
// escape as raw errors; a failed file yields a ProcessingResult with Success
// false so one bad file cannot abort a batch.
//
//	eng := engine.New(strategy.NewDefaultRegistry(), priorities,
//	    engine.WithASTProvider(parser.New()),
//	    engine.WithSink(engine.NewZapSink(logger)))
//	res, err := eng.Process(ctx, "main.go", content, "", types.DefaultOptions())
package engine
