// Package lang maps file paths to the language identifiers used throughout
// the engine. Detection is extension-based; unknown extensions yield the
// empty language, which only language-agnostic strategies accept.
package lang

import (
	"path/filepath"
	"strings"
)

// Language identifiers for languages with first-class strategy support.
const (
	Go         = "go"
	JavaScript = "javascript"
	TypeScript = "typescript"
	Python     = "python"
	Rust       = "rust"
	Java       = "java"
	C          = "c"
	CPP        = "cpp"
	Markdown   = "markdown"
	XML        = "xml"
	HTML       = "html"
	SVG        = "svg"
	JSON       = "json"
	YAML       = "yaml"
)

var byExtension = map[string]string{
	".go":       Go,
	".js":       JavaScript,
	".mjs":      JavaScript,
	".cjs":      JavaScript,
	".jsx":      JavaScript,
	".ts":       TypeScript,
	".tsx":      TypeScript,
	".py":       Python,
	".rs":       Rust,
	".java":     Java,
	".c":        C,
	".h":        C,
	".cc":       CPP,
	".cpp":      CPP,
	".hpp":      CPP,
	".md":       Markdown,
	".markdown": Markdown,
	".xml":      XML,
	".html":     HTML,
	".htm":      HTML,
	".svg":      SVG,
	".json":     JSON,
	".yaml":     YAML,
	".yml":      YAML,
}

// Detect returns the language for a file path, or the empty string when the
// extension is not recognized.
func Detect(path string) string {
	return byExtension[strings.ToLower(filepath.Ext(path))]
}

// Known reports whether the path maps to a recognized language.
func Known(path string) bool {
	return Detect(path) != ""
}
