package strategy

import "strings"

// Structure summarizes a file's shape from a single regex-free pass. The
// selector feeds it into content-adaptivity scoring, and the function
// strategy reuses the same declaration detection for its cut points.
type Structure struct {
	// Functions counts top-level function/method/class declarations.
	Functions int

	// MaxDepth is the deepest curly-bracket nesting observed.
	MaxDepth int

	// BracketDensity is brackets per byte of content.
	BracketDensity float64

	// Blocks counts blank-line separated paragraphs.
	Blocks int
}

// declPrefixes lists the line prefixes that open a declaration, per language.
// Matching is done on the untrimmed line so only column-0 declarations count
// as top-level in indentation-structured languages.
var declPrefixes = map[string][]string{
	"go":         {"func ", "type ", "var (", "const ("},
	"javascript": {"function ", "async function ", "class ", "export function ", "export async function ", "export class ", "export default function ", "const ", "export const "},
	"typescript": {"function ", "async function ", "class ", "interface ", "enum ", "export function ", "export async function ", "export class ", "export interface ", "export enum ", "export default function ", "export const ", "const "},
	"python":     {"def ", "async def ", "class ", "@"},
	"rust":       {"fn ", "pub fn ", "pub(crate) fn ", "impl ", "struct ", "pub struct ", "enum ", "pub enum ", "trait ", "pub trait "},
	"java":       {"public ", "private ", "protected ", "class ", "interface ", "enum "},
	"c":          {"void ", "int ", "char ", "static ", "struct ", "typedef "},
	"cpp":        {"void ", "int ", "char ", "static ", "struct ", "typedef ", "class ", "template", "namespace "},
}

// isDeclarationLine reports whether the line opens a top-level declaration
// for the language. depth is the bracket nesting before the line.
func isDeclarationLine(line, language string, depth int) bool {
	if depth > 0 {
		return false
	}
	prefixes, ok := declPrefixes[language]
	if !ok {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Scan performs a single structural pass over the content. It never
// allocates proportionally to input size beyond the line split.
func Scan(content, language string) Structure {
	var st Structure
	if content == "" {
		return st
	}

	brackets := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '{', '}', '(', ')', '[', ']':
			brackets++
		}
	}
	st.BracketDensity = float64(brackets) / float64(len(content))

	depth := 0
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			inBlock = false
		} else if !inBlock {
			inBlock = true
			st.Blocks++
		}

		if isDeclarationLine(line, language, depth) {
			st.Functions++
		}

		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '{':
				depth++
				if depth > st.MaxDepth {
					st.MaxDepth = depth
				}
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}
	return st
}
