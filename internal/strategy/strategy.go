package strategy

import (
	"context"
	"errors"
	"sort"

	"github.com/dshills/codechunk/pkg/types"
)

// Registered strategy names. The line strategy is the minimal terminal
// fallback: pure fixed-size splitting with no language assumptions.
const (
	NameAST      = "ast"
	NameFunction = "function"
	NameSemantic = "semantic"
	NameBracket  = "bracket"
	NameMarkdown = "markdown"
	NameXML      = "xml"
	NameLine     = "line"
)

// ErrASTUnavailable is returned by AST-requiring strategies when the context
// carries no usable syntax tree. The coordinator classifies it as a parse
// mismatch so AST strategies are filtered from the fallback path.
var ErrASTUnavailable = errors.New("syntax tree unavailable")

// Strategy turns one file's content (and optionally its syntax tree) into an
// ordered list of chunks. Implementations must be stateless and safe for
// concurrent use; per-call state lives in the StrategyContext.
//
// Long-running strategies check ctx at natural loop boundaries so the
// coordinator's deadline can take effect; the coordinator abandons rather
// than kills an overrunning attempt.
type Strategy interface {
	Descriptor() types.StrategyDescriptor
	Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error)
}

// effectiveLineCount ignores the phantom empty line a trailing newline
// produces.
func effectiveLineCount(lines []string) int {
	n := len(lines)
	if n > 1 && lines[n-1] == "" {
		n--
	}
	return n
}

// assemble converts a strategy's cut points into chunks covering lines 1..n
// with no gaps. Cut points are 1-based line numbers where a new segment
// begins; they may be unsorted, duplicated, or out of range. Segments smaller
// than MinChunkSize merge with their neighbor when the result stays within
// MaxChunkSize; segments larger than MaxChunkSize split at line granularity.
// A single line longer than MaxChunkSize becomes its own chunk since one line
// is the atomic unit.
func assemble(sc *types.StrategyContext, opts types.ChunkingOptions, cuts []int, strategyName string) []types.CodeChunk {
	lines := sc.Lines()
	n := effectiveLineCount(lines)
	if n == 0 || (n == 1 && lines[0] == "") {
		return nil
	}

	bounds := segmentBounds(cuts, n)
	bounds = mergeSmall(bounds, lines, opts)
	bounds = splitOversized(bounds, lines, opts.MaxChunkSize)

	chunks := make([]types.CodeChunk, 0, len(bounds))
	for _, b := range bounds {
		content := joinLines(lines, b[0], b[1])
		chunk := types.NewCodeChunk(sc.FilePath, content, b[0], b[1], sc.Language)
		chunk.Metadata = map[string]string{"strategy": strategyName}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// segmentBounds normalizes raw cut points into ordered [start,end] pairs
// covering 1..n.
func segmentBounds(cuts []int, n int) [][2]int {
	valid := make([]int, 0, len(cuts)+1)
	seen := make(map[int]bool, len(cuts)+1)
	valid = append(valid, 1)
	seen[1] = true
	for _, c := range cuts {
		if c > 1 && c <= n && !seen[c] {
			valid = append(valid, c)
			seen[c] = true
		}
	}
	sort.Ints(valid)

	bounds := make([][2]int, 0, len(valid))
	for i, start := range valid {
		end := n
		if i+1 < len(valid) {
			end = valid[i+1] - 1
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}

// mergeSmall folds segments below MinChunkSize into the following segment
// while the combined size stays within MaxChunkSize. A small trailing segment
// merges backward instead.
func mergeSmall(bounds [][2]int, lines []string, opts types.ChunkingOptions) [][2]int {
	if len(bounds) <= 1 {
		return bounds
	}
	merged := make([][2]int, 0, len(bounds))
	cur := bounds[0]
	for _, next := range bounds[1:] {
		curSize := spanSize(lines, cur[0], cur[1])
		nextSize := spanSize(lines, next[0], next[1])
		if (curSize < opts.MinChunkSize || nextSize < opts.MinChunkSize) && curSize+nextSize <= opts.MaxChunkSize {
			cur[1] = next[1]
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	return merged
}

// splitOversized breaks segments exceeding maxSize at line boundaries.
func splitOversized(bounds [][2]int, lines []string, maxSize int) [][2]int {
	out := make([][2]int, 0, len(bounds))
	for _, b := range bounds {
		if spanSize(lines, b[0], b[1]) <= maxSize {
			out = append(out, b)
			continue
		}
		start := b[0]
		size := 0
		for ln := b[0]; ln <= b[1]; ln++ {
			lineSize := len(lines[ln-1]) + 1
			if size > 0 && size+lineSize > maxSize {
				out = append(out, [2]int{start, ln - 1})
				start = ln
				size = 0
			}
			size += lineSize
		}
		out = append(out, [2]int{start, b[1]})
	}
	return out
}

// spanSize returns the byte length of lines start..end joined by newlines.
func spanSize(lines []string, start, end int) int {
	size := 0
	for ln := start; ln <= end; ln++ {
		size += len(lines[ln-1]) + 1
	}
	return size - 1
}

func joinLines(lines []string, start, end int) string {
	size := spanSize(lines, start, end)
	buf := make([]byte, 0, size)
	for ln := start; ln <= end; ln++ {
		if ln > start {
			buf = append(buf, '\n')
		}
		buf = append(buf, lines[ln-1]...)
	}
	return string(buf)
}
