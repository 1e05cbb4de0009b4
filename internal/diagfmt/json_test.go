package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"cniutil/internal/diag"
	"cniutil/internal/source"
)

func TestJSONBasic(t *testing.T) {
	f, bag := testFile("a = `raw\n")
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.LintUnterminatedRaw,
		Span: source.Span{
			Start: source.LineCol{Line: 1, Col: 5},
			End:   source.LineCol{Line: 2, Col: 1},
		},
		Message: "Expected '`' at end of raw value.",
	})

	var buf bytes.Buffer
	if err := JSON(&buf, bag, f, JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\noutput: %s", err, buf.String())
	}

	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "syntax error" {
		t.Errorf("severity = %q", d.Severity)
	}
	if d.Code != "unterminated-raw" {
		t.Errorf("code = %q", d.Code)
	}
	if d.Message != "Expected '`' at end of raw value." {
		t.Errorf("message = %q", d.Message)
	}
	loc := d.Location
	if loc.File != "test.cni" {
		t.Errorf("file = %q", loc.File)
	}
	if loc.StartLine != 1 || loc.StartCol != 5 || loc.EndLine != 2 || loc.EndCol != 1 {
		t.Errorf("location = %+v", loc)
	}
}

func TestJSONMax(t *testing.T) {
	f, bag := testFile("")
	for i := range 5 {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevInfo,
			Code:     diag.LintUnnecessaryWhitespace,
			Span:     source.Point(source.LineCol{Line: uint32(i + 1), Col: 1}),
			Message:  "unnecessary whitespace",
		})
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, f, JSONOpts{Max: 2}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if output.Count != 2 || len(output.Diagnostics) != 2 {
		t.Errorf("expected truncation to 2, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}
}

func TestJSONEmptyBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diag.NewBag(1), nil, JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if output.Count != 0 {
		t.Errorf("count = %d", output.Count)
	}
}
