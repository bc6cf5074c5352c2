package types

import (
	"fmt"
	"strings"
)

// FailureReason classifies why a strategy execution attempt failed. The
// fallback manager uses it to filter unsuitable retry candidates.
type FailureReason string

const (
	// ReasonTimeout marks an attempt that exceeded its execution deadline.
	ReasonTimeout FailureReason = "timeout"

	// ReasonParseMismatch marks an AST or parse failure. AST-requiring
	// strategies are never offered as fallbacks for this reason.
	ReasonParseMismatch FailureReason = "parse_mismatch"

	// ReasonInternal marks a thrown error or malformed strategy output.
	ReasonInternal FailureReason = "internal_error"
)

// IsASTFailure reports whether the reason indicates the syntax tree itself is
// unusable.
func (r FailureReason) IsASTFailure() bool {
	return r == ReasonParseMismatch
}

// NoApplicableStrategyError is returned when no registered strategy supports
// a file's language. It signals a configuration problem and is never retried.
type NoApplicableStrategyError struct {
	FilePath string
	Language string
}

func (e *NoApplicableStrategyError) Error() string {
	return fmt.Sprintf("no applicable strategy for %s (language %q)", e.FilePath, e.Language)
}

// StrategyExecutionError wraps a failure from a single strategy attempt.
type StrategyExecutionError struct {
	Strategy string
	Reason   FailureReason
	Err      error
}

func (e *StrategyExecutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("strategy %s failed: %s", e.Strategy, e.Reason)
	}
	return fmt.Sprintf("strategy %s failed (%s): %v", e.Strategy, e.Reason, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *StrategyExecutionError) Unwrap() error {
	return e.Err
}

// GuardBlockedError is returned when memory headroom is critically exhausted.
// It is fatal for the current call and must propagate so the caller can shed
// load.
type GuardBlockedError struct {
	Detail string
}

func (e *GuardBlockedError) Error() string {
	if e.Detail == "" {
		return "execution blocked: memory critically exhausted"
	}
	return "execution blocked: " + e.Detail
}

// AttemptFailure records one failed attempt in an exhausted fallback chain.
type AttemptFailure struct {
	Strategy string
	Reason   FailureReason
	Err      error
}

// ExhaustedError is returned when every fallback candidate has been tried and
// failed. It carries the full attempt history for diagnostics.
type ExhaustedError struct {
	FilePath string
	Attempts []AttemptFailure
}

func (e *ExhaustedError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = fmt.Sprintf("%s (%s)", a.Strategy, a.Reason)
	}
	return fmt.Sprintf("all strategies exhausted for %s: tried %s", e.FilePath, strings.Join(names, ", "))
}
