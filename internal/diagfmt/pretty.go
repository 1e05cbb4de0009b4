// Package diagfmt renders collected diagnostics for humans and machines.
package diagfmt

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cniutil/internal/diag"
	"cniutil/internal/dialect"
	"cniutil/internal/source"
)

// Pretty formats diagnostics in a human-readable way. It walks bag.Items()
// in order (call bag.Sort() beforehand when bags were merged) and prints one
// line per diagnostic:
//
//	<start>-<end> <severity>: <message>
//
// With opts.Context set and a non-nil file, the offending source line follows
// with a ^~~~ underline across the span.
func Pretty(w io.Writer, bag *diag.Bag, f *source.File, opts PrettyOpts) {
	for _, item := range bag.Items() {
		sev := item.Severity.String()
		if opts.Color {
			sev = severityColor(item.Severity).Sprint(sev)
		}
		fmt.Fprintf(w, "%s %s: %s\n", item.Span, sev, item.Message)

		if opts.Context && f != nil {
			writeContext(w, f, item.Span)
		}
	}
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevInfo:
		return color.New(color.FgCyan)
	case diag.SevWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// writeContext prints the first line of the span with an underline. The
// underline is sized with display widths, not rune counts, so wide runes
// stay aligned.
func writeContext(w io.Writer, f *source.File, span source.Span) {
	lineText, ok := extractLine(f.Content, span.Start.Line)
	if !ok {
		return
	}
	// tabs have no fixed display width
	lineText = strings.ReplaceAll(lineText, "\t", " ")
	runes := []rune(lineText)

	startCol := int(span.Start.Col)
	if startCol > len(runes)+1 {
		startCol = len(runes) + 1
	}
	endCol := int(span.End.Col)
	if span.End.Line != span.Start.Line || endCol > len(runes)+1 {
		// clip multi-line spans to the first line
		endCol = len(runes) + 1
	}
	if endCol <= startCol {
		endCol = startCol + 1
	}

	pad := runewidth.StringWidth(string(runes[:startCol-1]))
	width := 1
	if startCol <= len(runes) {
		upto := min(endCol-1, len(runes))
		width = runewidth.StringWidth(string(runes[startCol-1 : upto]))
		if width < 1 {
			width = 1
		}
	}

	fmt.Fprintf(w, "  %s\n", lineText)
	fmt.Fprintf(w, "  %s^%s\n", strings.Repeat(" ", pad), strings.Repeat("~", width-1))
}

// extractLine returns the text of the given 1-based line. Line breaks follow
// the scanner's rules: every vertical-whitespace unit breaks, CRLF counts as
// one break.
func extractLine(content []byte, line uint32) (string, bool) {
	cur := uint32(1)
	start := 0
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		brk := dialect.IsVerticalWS(r)
		if r == '\r' && i+size < len(content) && content[i+size] == '\n' {
			// the \n of the pair terminates this line
			brk = false
		}
		i += size
		if brk {
			if cur == line {
				return strings.TrimSuffix(string(content[start:i-size]), "\r"), true
			}
			cur++
			start = i
		}
	}
	if cur == line {
		return string(content[start:]), true
	}
	return "", false
}
