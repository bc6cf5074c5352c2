package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/codechunk/internal/guard"
	"github.com/dshills/codechunk/pkg/types"
)

// Sink receives the coordinator's structured events. Implementations must be
// fire-and-forget: they never return errors, never block the coordinator,
// and never fail a processing call.
type Sink interface {
	StrategySelected(file, strategy string)
	StrategyFailed(file, strategy string, reason types.FailureReason, err error)
	FallbackTriggered(file, failed, next string)
	GuardDegraded(file string, state guard.State)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) StrategySelected(string, string)                           {}
func (NopSink) StrategyFailed(string, string, types.FailureReason, error) {}
func (NopSink) FallbackTriggered(string, string, string)                  {}
func (NopSink) GuardDegraded(string, guard.State)                         {}

// ZapSink emits events as structured zap log entries.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink creates a sink over the given logger. A nil logger falls back
// to zap.NewNop.
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log}
}

func (s *ZapSink) StrategySelected(file, strategy string) {
	s.log.Debug("strategy_selected",
		zap.String("file", file),
		zap.String("strategy", strategy))
}

func (s *ZapSink) StrategyFailed(file, strategy string, reason types.FailureReason, err error) {
	s.log.Warn("strategy_failed",
		zap.String("file", file),
		zap.String("strategy", strategy),
		zap.String("reason", string(reason)),
		zap.Error(err))
}

func (s *ZapSink) FallbackTriggered(file, failed, next string) {
	s.log.Info("fallback_triggered",
		zap.String("file", file),
		zap.String("failed", failed),
		zap.String("next", next))
}

func (s *ZapSink) GuardDegraded(file string, state guard.State) {
	s.log.Warn("guard_degraded",
		zap.String("file", file),
		zap.String("state", state.String()))
}
