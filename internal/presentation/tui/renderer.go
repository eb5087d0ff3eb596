// Package tui renders bot messages for terminals.
package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// When stdout is not a terminal, text is returned unchanged.
func NewRenderer() func(string) (string, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return plain
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return plain
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

func plain(s string) (string, error) {
	return s, nil
}
