// Package render turns AI markdown responses into terminal escape-sequence
// output safe to write while the terminal is in raw mode.
package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 80

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("10")).
	Padding(0, 1)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("10")).
	Bold(true)

// Markdown renders md as a bordered suggestion panel. width is the terminal
// width in columns; values <= 0 fall back to 80. The returned string uses
// CRLF line endings so it displays correctly on a raw-mode terminal.
func Markdown(md string, width int) string {
	if width <= 0 || width > defaultWidth {
		width = defaultWidth
	}
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}

	body := md
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, rerr := r.Render(md); rerr == nil {
			body = out
		}
	}

	panel := panelStyle.Width(width - 2).Render(strings.TrimRight(body, "\n"))
	block := titleStyle.Render("SmartTerm AI Suggestion") + "\n" + panel + "\n"
	return CRLF("\n" + block + "\n")
}

// ErrorLine formats a one-line analysis failure notice.
func ErrorLine(msg string) string {
	return CRLF("\n\x1b[1;31m[SmartTerm] " + msg + "\x1b[0m\n")
}

// Notice formats a one-line informational status message.
func Notice(msg string) string {
	return CRLF("\n\x1b[1;33m[SmartTerm] " + msg + "\x1b[0m\n")
}

// Analyzing formats the status line shown while a request is in flight.
func Analyzing(chars int) string {
	return CRLF("\n\x1b[1;34m[SmartTerm] Analyzing " + strconv.Itoa(chars) + " chars...\x1b[0m\n")
}

// CRLF rewrites bare newlines to carriage-return/newline pairs. A raw-mode
// terminal does no output post-processing, so a lone \n moves down a row
// without returning to column zero.
func CRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
