// Package note renders the Markdown notes of the papers, with their math,
// to HTML for the pages and to styled text for the terminal.
package note

import (
	"html/template"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday"
)

var policy = bluemonday.UGCPolicy()

// Render converts a Markdown note to HTML that is safe to embed in a page.
// Math is kept as escaped TeX in span.math elements, to be typeset by the
// page.
func Render(src string) template.HTML {
	if src == "" {
		return ""
	}

	e := newExtraction()
	md := e.extract(src)

	unsafe := blackfriday.MarkdownCommon([]byte(md))
	safe := policy.SanitizeBytes(unsafe)

	return template.HTML(e.restore(string(safe)))
}

// RenderTerminal renders a Markdown note for a terminal of the given width.
// The raw note is returned when it cannot be rendered.
func RenderTerminal(src string, width int) string {
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return src
	}

	out, err := renderer.Render(src)
	if err != nil {
		return src
	}
	return out
}
