// Package types provides shared type definitions for the codechunk engine.
//
// This package defines the domain types used across the strategy coordination
// components: strategy contexts, chunking options, chunks, descriptors,
// processing results, and the error taxonomy.
//
// # Core Types
//
// StrategyContext carries one file's content plus an optional syntax tree
// through selection and execution:
//
//	sc := types.NewStrategyContext("main.go", content, "go")
//
// CodeChunk is the output unit. Chunk identity is a deterministic hash over
// the file path, line range, and content hash, so re-processing unchanged
// input produces identical IDs:
//
//	chunk := types.NewCodeChunk("main.go", body, 10, 42, "go")
//
// # Error Taxonomy
//
// Four error kinds leave the engine:
//
//   - NoApplicableStrategyError: no registered strategy supports the file's
//     language; a configuration problem, surfaced immediately.
//   - StrategyExecutionError: one attempt failed; classified by FailureReason
//     (timeout, parse mismatch, internal) and consumed by the fallback chain.
//   - GuardBlockedError: memory critically exhausted; fatal for the call.
//   - ExhaustedError: every fallback candidate failed; carries the full
//     attempt history.
//
// Strategy-level failures never escape the coordinator as raw errors; a
// failed file yields a ProcessingResult with Success false instead of
// aborting a batch.
package types
