package diagfmt

import (
	"encoding/json"
	"io"

	"cniutil/internal/diag"
	"cniutil/internal/source"
)

// LocationJSON is a span in a file for JSON output.
type LocationJSON struct {
	File      string `json:"file,omitempty"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticsOutput is the root structure of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, f *source.File) LocationJSON {
	loc := LocationJSON{
		StartLine: span.Start.Line,
		StartCol:  span.Start.Col,
		EndLine:   span.End.Line,
		EndCol:    span.End.Col,
	}
	if f != nil {
		loc.File = f.Path
	}
	return loc
}

// BuildDiagnosticsOutput builds the JSON output structure without
// serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, f *source.File, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for i := range maxItems {
		d := items[i]
		diagnostics = append(diagnostics, DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
			Location: makeLocation(d.Span, f),
		})
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON formats diagnostics as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, f *source.File, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(bag, f, opts)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
