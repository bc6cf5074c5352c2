package priority

import (
	"sync"
	"time"
)

// Stats tracks rolling per-strategy execution statistics. A single instance
// is owned by the engine and shared by reference with every worker; all
// access is mutex-guarded because concurrent file workers record into it.
type Stats struct {
	mu     sync.Mutex
	byName map[string]*strategyStats
}

type strategyStats struct {
	executions int64
	successes  int64
	totalTime  time.Duration
}

// Snapshot is a point-in-time copy of one strategy's statistics.
type Snapshot struct {
	Executions  int64
	Successes   int64
	TotalTime   time.Duration
	AvgTime     time.Duration
	SuccessRate float64
}

// NewStats creates an empty statistics tracker.
func NewStats() *Stats {
	return &Stats{byName: make(map[string]*strategyStats)}
}

// Record adds one execution outcome for a strategy.
func (s *Stats) Record(name string, d time.Duration, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.byName[name]
	if st == nil {
		st = &strategyStats{}
		s.byName[name] = st
	}
	st.executions++
	st.totalTime += d
	if success {
		st.successes++
	}
}

// Get returns the snapshot for one strategy. The zero snapshot is returned
// for strategies that never executed.
func (s *Stats) Get(name string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.byName[name]
	if st == nil {
		return Snapshot{}
	}
	return snapshotOf(st)
}

// All returns snapshots for every strategy that has executed at least once.
func (s *Stats) All() map[string]Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Snapshot, len(s.byName))
	for name, st := range s.byName {
		out[name] = snapshotOf(st)
	}
	return out
}

func snapshotOf(st *strategyStats) Snapshot {
	snap := Snapshot{
		Executions: st.executions,
		Successes:  st.successes,
		TotalTime:  st.totalTime,
	}
	if st.executions > 0 {
		snap.AvgTime = st.totalTime / time.Duration(st.executions)
		snap.SuccessRate = float64(st.successes) / float64(st.executions)
	}
	return snap
}
