package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codechunk/pkg/types"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult(path string) types.ProcessingResult {
	chunks := []types.CodeChunk{
		types.NewCodeChunk(path, "package main", 1, 1, "go"),
		types.NewCodeChunk(path, "func main() {}", 3, 3, "go"),
	}
	for i := range chunks {
		chunks[i].Metadata = map[string]string{"strategy": "function"}
	}
	return types.ProcessingResult{
		FilePath:     path,
		StrategyName: "function",
		Chunks:       chunks,
		Success:      true,
	}
}

func TestSaveResult_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := sampleResult("main.go")
	require.NoError(t, s.SaveResult(ctx, res, "hash-1", 27))

	f, err := s.GetFileByPath(ctx, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "main.go", f.FilePath)
	assert.Equal(t, "go", f.Language)
	assert.Equal(t, "hash-1", f.ContentHash)
	assert.Equal(t, int64(27), f.SizeBytes)
	assert.Equal(t, "function", f.Strategy)
	assert.False(t, f.IndexedAt.IsZero())

	chunks, err := s.ListChunksByFile(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, res.Chunks[0].ID, chunks[0].ChunkID)
	assert.Equal(t, "package main", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 3, chunks[1].StartLine)
	assert.Equal(t, "function", chunks[1].Strategy)
}

func TestUnchanged(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Unchanged(ctx, "main.go", "hash-1")
	require.NoError(t, err)
	assert.False(t, ok, "unknown file is never unchanged")

	require.NoError(t, s.SaveResult(ctx, sampleResult("main.go"), "hash-1", 27))

	ok, err = s.Unchanged(ctx, "main.go", "hash-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Unchanged(ctx, "main.go", "hash-2")
	require.NoError(t, err)
	assert.False(t, ok, "different hash means the file changed")
}

func TestSaveResult_ReplacesChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, sampleResult("main.go"), "hash-1", 27))

	// Re-saving with a single different chunk replaces the old set.
	res := types.ProcessingResult{
		FilePath:     "main.go",
		StrategyName: "line",
		Chunks: []types.CodeChunk{
			types.NewCodeChunk("main.go", "everything", 1, 3, "go"),
		},
		Success: true,
	}
	res.Chunks[0].Metadata = map[string]string{"strategy": "line"}
	require.NoError(t, s.SaveResult(ctx, res, "hash-2", 10))

	f, err := s.GetFileByPath(ctx, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", f.ContentHash)
	assert.Equal(t, "line", f.Strategy)

	chunks, err := s.ListChunksByFile(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "everything", chunks[0].Content)

	count, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveResult(context.Background(), sampleResult("main.go"), "hash-1", 27))
	require.NoError(t, s.Close())

	// Reopening an existing database applies nothing and loses nothing.
	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	count, err := s.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGetFileByPath_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetFileByPath(context.Background(), "missing.go")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountChunks_Empty(t *testing.T) {
	s := openTestStore(t)

	count, err := s.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
