package parser

import (
	"errors"
	"maps"
	"testing"

	"cniutil/internal/dialect"
	"cniutil/internal/source"
)

func mustParse(t *testing.T, text string, d dialect.Dialect) map[string]string {
	t.Helper()
	m, err := ParseString(text, d)
	if err != nil {
		t.Fatalf("ParseString(%q) failed: %v", text, err)
	}
	return m
}

func parseErr(t *testing.T, text string, d dialect.Dialect) *Error {
	t.Helper()
	_, err := ParseString(text, d)
	if err == nil {
		t.Fatalf("ParseString(%q) should have failed", text)
	}
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("error is %T, want *parser.Error", err)
	}
	return pe
}

func TestBasics(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"blank lines", "\n\n  \n", map[string]string{}},
		{"comment only", "# hello\n", map[string]string{}},
		{"simple pair", "a = b", map[string]string{"a": "b"}},
		{"no spaces", "a=b", map[string]string{"a": "b"}},
		{"empty value", "a =", map[string]string{"a": ""}},
		{"value trimmed", "a =   b c  \n", map[string]string{"a": "b c"}},
		{"trailing comment", "a = b # c\n", map[string]string{"a": "b"}},
		{"value stops at comment", "a = b#c", map[string]string{"a": "b"}},
		{"dotted key", "a.b = c", map[string]string{"a.b": "c"}},
		{"inner double dot allowed", "a..b = c", map[string]string{"a..b": "c"}},
		{"two pairs", "a = 1\nb = 2\n", map[string]string{"a": "1", "b": "2"}},
		{"duplicate last wins", "a = 1\na = 2\n", map[string]string{"a": "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustParse(t, tc.input, dialect.Dialect{})
			if !maps.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSections(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"section scoping", "[s]\nk = v\n", map[string]string{"s.k": "v"}},
		{"empty header resets", "[s]\nk = v\n[]\nk = w\n", map[string]string{"s.k": "v", "k": "w"}},
		{"nested section", "[a.b]\nc = d\n", map[string]string{"a.b.c": "d"}},
		{"header whitespace", "[ s ]\nk = v\n", map[string]string{"s.k": "v"}},
		{"header trailing comment", "[s] # sec\nk = v\n", map[string]string{"s.k": "v"}},
		{"two sections", "[a]\nx = 1\n[b]\nx = 2\n", map[string]string{"a.x": "1", "b.x": "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustParse(t, tc.input, dialect.Dialect{})
			if !maps.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRawValues(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"raw value", "k = `raw`", map[string]string{"k": "raw"}},
		{"escaped backtick", "k = `a``b`", map[string]string{"k": "a`b"}},
		{"raw keeps whitespace", "k = ` a b `", map[string]string{"k": " a b "}},
		{"raw keeps newline", "k = `a\nb`", map[string]string{"k": "a\nb"}},
		{"raw keeps comment char", "k = `a#b`", map[string]string{"k": "a#b"}},
		{"empty raw", "k = ``", map[string]string{"k": ""}},
		{"only escaped backtick", "k = ````", map[string]string{"k": "`"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustParse(t, tc.input, dialect.Dialect{})
			if !maps.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		kind      Kind
		line, col uint32
	}{
		{"leading dot key", ".k = v", InvalidKey, 1, 1},
		{"trailing dot key", "k. = v", InvalidKey, 1, 1},
		{"missing equals", "k v", ExpectedEquals, 1, 2},
		{"no key", "= v", ExpectedKey, 1, 1},
		{"unterminated header", "[s", ExpectedSectionEnd, 1, 3},
		{"header missing bracket", "[s\nk = v", ExpectedSectionEnd, 1, 3},
		{"header invalid key", "[.s]", InvalidKey, 1, 2},
		{"unterminated raw at opening", "a = `", UnterminatedRaw, 1, 5},
		{"unterminated raw spanning lines", "a = `x\ny", UnterminatedRaw, 1, 5},
		{"lone bracket", "]", ExpectedKey, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pe := parseErr(t, tc.input, dialect.Dialect{})
			if pe.Kind != tc.kind {
				t.Errorf("kind = %v, want %v", pe.Kind, tc.kind)
			}
			if pe.Line != tc.line || pe.Col != tc.col {
				t.Errorf("position = %d:%d, want %d:%d", pe.Line, pe.Col, tc.line, tc.col)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	pe := parseErr(t, "a = `", dialect.Dialect{})
	if got := pe.Error(); got != "line 1:5: unterminated raw value" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDialectGating(t *testing.T) {
	// ';' starts a comment only with the ini extension
	got := mustParse(t, "a = b ; c", dialect.Dialect{INI: true})
	if got["a"] != "b" {
		t.Errorf("ini dialect: a = %q, want \"b\"", got["a"])
	}
	got = mustParse(t, "a = b ; c", dialect.Dialect{})
	if got["a"] != "b ; c" {
		t.Errorf("core dialect: a = %q, want \"b ; c\"", got["a"])
	}

	// wide key charset only with more-keys
	got = mustParse(t, "ä/b = c", dialect.Dialect{MoreKeys: true})
	if got["ä/b"] != "c" {
		t.Errorf("more-keys dialect: got %v", got)
	}
	pe := parseErr(t, "ä/b = c", dialect.Dialect{})
	if pe.Kind != ExpectedKey {
		t.Errorf("core dialect should reject wide key with ExpectedKey, got %v", pe.Kind)
	}
}

func TestScanOrderAndPositions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.cni", []byte("a = 1\nb = `x`\n"))
	p := New(fs.Get(id), dialect.Dialect{})

	if _, ok := p.LastPos(); ok {
		t.Error("LastPos before first Scan should report ok=false")
	}

	if !p.Scan() {
		t.Fatal("first Scan failed")
	}
	if pair := p.Pair(); pair.Key != "a" || pair.Value != "1" {
		t.Errorf("first pair = %+v", pair)
	}
	if pos, ok := p.LastPos(); !ok || pos != (source.LineCol{Line: 1, Col: 5}) {
		t.Errorf("LastPos = %v ok=%v, want 1:5", pos, ok)
	}

	if !p.Scan() {
		t.Fatal("second Scan failed")
	}
	if pos, ok := p.LastPos(); !ok || pos != (source.LineCol{Line: 2, Col: 5}) {
		t.Errorf("LastPos = %v ok=%v, want 2:5", pos, ok)
	}

	if p.Scan() {
		t.Error("Scan past end should return false")
	}
	if err := p.Err(); err != nil {
		t.Errorf("clean end should have nil Err, got %v", err)
	}
}

func TestErrorIsTerminal(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.cni", []byte("a = 1\n= broken\nb = 2\n"))
	p := New(fs.Get(id), dialect.Dialect{})

	if !p.Scan() {
		t.Fatal("first pair should scan")
	}
	if p.Scan() {
		t.Fatal("second Scan should fail")
	}
	first := p.Err()
	if first == nil {
		t.Fatal("expected an error")
	}
	if _, ok := p.LastPos(); ok {
		t.Error("LastPos after an error should report ok=false")
	}

	// the sequence is pinned: further calls change nothing
	for i := 0; i < 3; i++ {
		if p.Scan() {
			t.Fatal("Scan after error must keep returning false")
		}
		if !errors.Is(p.Err(), first) {
			t.Error("Err after error must keep returning the same error")
		}
	}
}

func TestCRLFHandling(t *testing.T) {
	got := mustParse(t, "a = 1\r\nb = 2\r\n", dialect.Dialect{})
	want := map[string]string{"a": "1", "b": "2"}
	if !maps.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// error position after a CRLF pair counts one line
	pe := parseErr(t, "a = 1\r\nb = `", dialect.Dialect{})
	if pe.Line != 2 || pe.Col != 5 {
		t.Errorf("position = %d:%d, want 2:5", pe.Line, pe.Col)
	}
}
