package types

import "time"

// ProcessingResult is the terminal artifact of processing one file. It is
// owned exclusively by the coordinator until returned, then handed off to the
// caller with no shared mutation afterward.
type ProcessingResult struct {
	FilePath      string
	StrategyName  string
	Chunks        []CodeChunk
	ExecutionTime time.Duration
	Success       bool

	// Err is populated on failed results. For exhausted fallback chains it is
	// an *ExhaustedError carrying every attempted strategy and its reason.
	Err error
}

// ChunkCount returns the number of chunks produced.
func (r *ProcessingResult) ChunkCount() int {
	return len(r.Chunks)
}
