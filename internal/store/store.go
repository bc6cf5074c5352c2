package store

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/codechunk/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// File represents one chunked file on disk.
type File struct {
	ID          int64
	FilePath    string
	Language    string
	ContentHash string
	SizeBytes   int64
	Strategy    string
	IndexedAt   time.Time
}

// Chunk is the persisted form of a types.CodeChunk.
type Chunk struct {
	ChunkID   string
	FileID    int64
	Content   string
	StartLine int
	EndLine   int
	Language  string
	Strategy  string
}

// Store persists chunking results so unchanged files can be skipped on the
// next indexing run.
type Store interface {
	// Unchanged reports whether the file at path is already stored with the
	// given content hash.
	Unchanged(ctx context.Context, path, contentHash string) (bool, error)

	// SaveResult upserts the file record and replaces its chunks with the
	// result's chunks atomically.
	SaveResult(ctx context.Context, res types.ProcessingResult, contentHash string, sizeBytes int64) error

	// GetFileByPath returns the stored file record.
	GetFileByPath(ctx context.Context, path string) (*File, error)

	// ListChunksByFile returns the stored chunks for a file in line order.
	ListChunksByFile(ctx context.Context, fileID int64) ([]*Chunk, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
