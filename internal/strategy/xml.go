package strategy

import (
	"context"
	"strings"

	"github.com/dshills/codechunk/pkg/types"
)

// XMLStrategy splits markup at shallow element boundaries: each child of the
// document root starts a new segment. It tolerates malformed markup by
// scanning tags textually instead of parsing, since real-world HTML rarely
// survives a strict parser.
type XMLStrategy struct{}

// NewXMLStrategy creates a tag-boundary strategy.
func NewXMLStrategy() *XMLStrategy {
	return &XMLStrategy{}
}

// voidElements never have closing tags in HTML.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Descriptor returns the strategy's capability descriptor.
func (s *XMLStrategy) Descriptor() types.StrategyDescriptor {
	return types.StrategyDescriptor{
		Name:         NameXML,
		RequiresAST:  false,
		Languages:    []string{"xml", "html", "svg"},
		BasePriority: 2,
		Complexity:   types.ComplexityModerate,
	}
}

// Split cuts at lines that open an element while nesting depth is at most
// one, i.e. at the document root's direct children.
func (s *XMLStrategy) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	lines := sc.Lines()
	var cuts []int
	depth := 0
	for i, line := range lines {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		opensAtShallow := false
		startDepth := depth
		for _, tag := range scanTags(line) {
			switch tag.kind {
			case tagOpen:
				if depth <= 1 && !opensAtShallow && startDepth <= 1 {
					opensAtShallow = true
				}
				depth++
			case tagClose:
				if depth > 0 {
					depth--
				}
			case tagSelfClosing:
				if depth <= 1 && !opensAtShallow && startDepth <= 1 {
					opensAtShallow = true
				}
			}
		}
		if opensAtShallow {
			cuts = append(cuts, i+1)
		}
	}
	return assemble(sc, opts, cuts, NameXML), nil
}

type tagKind int

const (
	tagOpen tagKind = iota
	tagClose
	tagSelfClosing
)

type tag struct {
	name string
	kind tagKind
}

// scanTags extracts element tags from one line, skipping comments,
// declarations, and processing instructions. Unterminated tags are ignored;
// the strategy degrades to fewer cut points rather than failing.
func scanTags(line string) []tag {
	var tags []tag
	for i := 0; i < len(line); i++ {
		if line[i] != '<' {
			continue
		}
		rest := line[i+1:]
		if strings.HasPrefix(rest, "!--") || strings.HasPrefix(rest, "!") || strings.HasPrefix(rest, "?") {
			continue
		}
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			break
		}
		body := rest[:end]
		i += end + 1

		closing := strings.HasPrefix(body, "/")
		body = strings.TrimPrefix(body, "/")
		selfClosed := strings.HasSuffix(body, "/")
		body = strings.TrimSuffix(body, "/")

		name := body
		if sp := strings.IndexAny(name, " \t"); sp >= 0 {
			name = name[:sp]
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		switch {
		case closing:
			tags = append(tags, tag{name: name, kind: tagClose})
		case selfClosed || voidElements[name]:
			tags = append(tags, tag{name: name, kind: tagSelfClosing})
		default:
			tags = append(tags, tag{name: name, kind: tagOpen})
		}
	}
	return tags
}
