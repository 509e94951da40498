package source

import (
	"path/filepath"
	"strings"
)

// SourceFile holds the text of a declaration file produced by the
// declaration compiler, together with where it came from.
type SourceFile struct {
	Name    string   // Display name (e.g., "lib.decl.js", "<inline>")
	URL     string   // Location the text was loaded from (empty for inline text)
	Content string   // The declaration text
	lines   []string // Cached split lines (lazy initialization)
}

// NewSourceFile creates a new source file
func NewSourceFile(name, url, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		URL:     url,
		Content: content,
	}
}

// NewInlineSource creates a source for declaration text given directly
func NewInlineSource(content string) *SourceFile {
	return &SourceFile{
		Name:    "<inline>",
		Content: content,
	}
}

// FromURL creates a SourceFile for text downloaded from URL.
func FromURL(URL, content string) *SourceFile {
	return NewSourceFile(filepath.Base(URL), URL, content)
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// DisplayPath returns the best path for display (prefers URL, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.URL != "" {
		return sf.URL
	}
	return sf.Name
}

// LineColumn converts a 0-based byte offset into a 1-based line and column.
func (sf *SourceFile) LineColumn(offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sf.Content) {
		offset = len(sf.Content)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if sf.Content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
