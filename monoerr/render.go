package monoerr

import (
	"fmt"
	"strings"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// RenderOptions controls how a TypeError is printed.
type RenderOptions struct {
	Color bool
}

// Render formats e against the source it was raised for. The report holds
// the message, the offending line verbatim, a caret-and-tilde underline for
// the span and one "from" line per active call, innermost first.
func (e *TypeError) Render(src string, opts RenderOptions) string {
	var b strings.Builder

	header := e.Error()
	if opts.Color {
		header = ansiBold + header + ansiReset
	}
	b.WriteString(header)
	b.WriteString("\n")

	lines := strings.Split(src, "\n")
	if e.Span.Line >= 1 && e.Span.Line <= len(lines) {
		lineTxt := strings.TrimRight(lines[e.Span.Line-1], "\r")
		b.WriteString("\n")
		fmt.Fprintf(&b, "%4d | %s\n", e.Span.Line, lineTxt)
		underline := Underline(lineTxt, e.Span.Column, e.Span.Length)
		if opts.Color {
			underline = ansiRed + underline + ansiReset
		}
		fmt.Fprintf(&b, "     | %s\n", underline)
	}

	if len(e.Frames) > 0 {
		b.WriteString("\n")
	}
	for _, f := range e.Frames {
		if f.Method != "" {
			fmt.Fprintf(&b, "  from line %d in '%s'\n", f.Line, f.Method)
		} else {
			fmt.Fprintf(&b, "  from line %d\n", f.Line)
		}
	}
	return b.String()
}

// Underline returns the caret line for a span starting at the 1-based column
// and covering length characters: one caret followed by length-1 tildes.
// Columns past the end of line are clamped so the caret stays visible.
func Underline(line string, column, length int) string {
	if column < 1 {
		column = 1
	}
	if column > len(line)+1 {
		column = len(line) + 1
	}
	if length < 1 {
		length = 1
	}
	var b strings.Builder
	for i := 0; i < column-1; i++ {
		// keep tabs so the caret lines up under the source text
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	b.WriteString(strings.Repeat("~", length-1))
	return b.String()
}
