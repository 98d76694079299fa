// Package view renders execution states for the terminal.
package view

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mitchellh/go-wordwrap"
)

// RenderMarkdown renders content for a terminal of the given width. With
// color false it uses the plain "notty" style. On any renderer error the
// content is returned word-wrapped but otherwise unchanged.
func RenderMarkdown(content string, width int, color bool) string {
	if width <= 0 {
		width = 80
	}
	style := "notty"
	if color {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wordwrap.WrapString(content, uint(width))
	}
	rendered, err := r.Render(content)
	if err != nil {
		return wordwrap.WrapString(content, uint(width))
	}
	return strings.Trim(rendered, "\n")
}

// lastLines wraps text at width and keeps at most n trailing lines.
func lastLines(text string, width, n int) string {
	if width > 0 {
		text = wordwrap.WrapString(text, uint(width))
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
