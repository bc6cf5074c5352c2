// Package guard provides the cross-cutting precondition check consulted
// before any execution attempt: memory headroom against configured soft and
// emergency thresholds, and the rolling error rate over a bounded time
// window.
package guard

import (
	"runtime"
	"sync"
	"time"
)

// State is the guard's verdict for one execution attempt.
type State int

const (
	// StateOK permits the normal selection and execution path.
	StateOK State = iota

	// StateDegraded forces the minimal, allocation-light fallback strategy.
	StateDegraded

	// StateBlocked refuses execution entirely: memory is critically
	// exhausted and degrading would make the pressure worse.
	StateBlocked
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateDegraded:
		return "degraded"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Config holds the guard thresholds, supplied by the configuration provider
// at startup. A zero limit disables that check.
type Config struct {
	// SoftMemoryLimitMB degrades execution when heap allocation exceeds it.
	SoftMemoryLimitMB uint64

	// HardMemoryLimitMB blocks execution when heap allocation exceeds it.
	HardMemoryLimitMB uint64

	// ErrorThreshold degrades execution when at least this many errors
	// occurred inside ErrorWindow.
	ErrorThreshold int

	// ErrorWindow is the rolling window for error-rate tracking.
	ErrorWindow time.Duration
}

// DefaultConfig returns conservative thresholds: degrade at 1 GiB of heap,
// block at 1.5 GiB, degrade after 10 errors in one minute.
func DefaultConfig() Config {
	return Config{
		SoftMemoryLimitMB: 1024,
		HardMemoryLimitMB: 1536,
		ErrorThreshold:    10,
		ErrorWindow:       time.Minute,
	}
}

// Coordinator is the guard. One instance is shared by all workers; error
// recording and window pruning are mutex-guarded.
type Coordinator struct {
	cfg Config

	mu         sync.Mutex
	errorTimes []time.Time

	// Injection points for tests.
	now    func() time.Time
	heapMB func() uint64
}

// New creates a guard coordinator.
func New(cfg Config) *Coordinator {
	if cfg.ErrorWindow <= 0 {
		cfg.ErrorWindow = time.Minute
	}
	return &Coordinator{
		cfg:    cfg,
		now:    time.Now,
		heapMB: heapAllocMB,
	}
}

// Check evaluates the preconditions for one execution attempt. The error
// window is pruned on every check so it never grows without bound.
func (c *Coordinator) Check() State {
	mem := c.heapMB()
	if c.cfg.HardMemoryLimitMB > 0 && mem >= c.cfg.HardMemoryLimitMB {
		return StateBlocked
	}
	if c.cfg.SoftMemoryLimitMB > 0 && mem >= c.cfg.SoftMemoryLimitMB {
		return StateDegraded
	}
	if c.cfg.ErrorThreshold > 0 && c.recentErrors() >= c.cfg.ErrorThreshold {
		return StateDegraded
	}
	return StateOK
}

// RecordError adds one failure to the rolling window.
func (c *Coordinator) RecordError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorTimes = append(c.errorTimes, c.now())
}

// recentErrors prunes expired entries and returns the current window count.
func (c *Coordinator) recentErrors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-c.cfg.ErrorWindow)
	kept := c.errorTimes[:0]
	for _, t := range c.errorTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	c.errorTimes = kept
	return len(kept)
}

func heapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc / (1 << 20)
}
