package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// CodeChunk is a bounded, contiguous slice of a file's content produced for
// downstream embedding and search. Line numbers are 1-based and inclusive.
type CodeChunk struct {
	// ID is a deterministic hash of (filePath, startLine, endLine, contentHash).
	// Re-processing identical input always yields identical IDs.
	ID string

	Content   string
	StartLine int
	EndLine   int
	Language  string

	// Metadata carries strategy-specific annotations (at minimum the name of
	// the strategy that produced the chunk under the "strategy" key).
	Metadata map[string]string
}

// ComputeContentHash computes the SHA-256 hash of arbitrary content.
func ComputeContentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// ComputeChunkID derives the stable chunk identity from the file path, line
// range, and content hash. The same inputs always produce the same ID.
func ComputeChunkID(filePath string, startLine, endLine int, contentHash string) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s:%d:%d:%s", filePath, startLine, endLine, contentHash))
	return hex.EncodeToString(h[:])
}

// NewCodeChunk builds a chunk with its identity precomputed.
func NewCodeChunk(filePath, content string, startLine, endLine int, language string) CodeChunk {
	return CodeChunk{
		ID:        ComputeChunkID(filePath, startLine, endLine, ComputeContentHash(content)),
		Content:   content,
		StartLine: startLine,
		EndLine:   endLine,
		Language:  language,
	}
}

// Validate checks structural integrity of the chunk. A chunk with an inverted
// line range is treated as malformed strategy output by the coordinator.
func (c *CodeChunk) Validate() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	if c.ID == "" {
		return errors.New("chunk ID must be computed")
	}
	return nil
}

// LineCount returns the number of lines spanned by the chunk.
func (c *CodeChunk) LineCount() int {
	return c.EndLine - c.StartLine + 1
}
