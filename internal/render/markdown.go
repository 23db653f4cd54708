package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders markdown content assets to HTML fragments, letting authors
// prerender static entries without a JS toolchain.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown constructs the fragment markdown renderer (GFM tables and
// strikethrough enabled).
func NewMarkdown() Markdown {
	return Markdown{md: goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)}
}

// Render converts a markdown payload to an HTML fragment.
func (m Markdown) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
