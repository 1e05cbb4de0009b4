package format

import (
	"maps"
	"strings"
	"testing"

	"cniutil/internal/dialect"
	"cniutil/internal/parser"
)

func TestValue(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "value", "value"},
		{"empty", "", "#empty"},
		{"spaces inside", "a b", "a b"},
		{"hash", "a#b", "`a#b`"},
		{"semicolon", "a;b", "`a;b`"},
		{"line break", "a\nb", "`a\nb`"},
		{"backtick escaped", "a`b", "`a``b`"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Value(tc.in); got != tc.want {
				t.Errorf("Value(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	cases := []struct {
		name string
		in   map[string]string
		want string
	}{
		{"single pair", map[string]string{"a": "b"}, "a = b\n"},
		{"dotted key gets heading", map[string]string{"a.b": "c"}, "[a]\nb = c\n"},
		{
			"plain keys before sections",
			map[string]string{"x": "1", "a.b": "c", "a.c": "d", "b.a": "z"},
			"x = 1\n[a]\nb = c\nc = d\n[b]\na = z\n",
		},
		{
			"only first segment becomes the section",
			map[string]string{"a.b.c": "1"},
			"[a]\nb.c = 1\n",
		},
		{"empty map", map[string]string{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Marshal(tc.in); got != tc.want {
				t.Errorf("Marshal(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	in := map[string]string{
		"plain":     "value",
		"empty":     "",
		"tricky":    "a`b\nc",
		"s.key":     "v1",
		"s.sub.key": "v2",
		"other.key": "#notacomment",
	}
	out, err := parser.ParseString(Marshal(in), dialect.Dialect{})
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if !maps.Equal(out, in) {
		t.Errorf("round trip changed the map:\n in  %v\n out %v", in, out)
	}
}

func TestFormatNoThreshold(t *testing.T) {
	var sb strings.Builder
	Format(&sb, map[string]string{"s.b": "1", "a": "2"}, 0)
	want := "a = 2\ns.b = 1\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestFormatThreshold(t *testing.T) {
	m := map[string]string{
		"a":   "1",
		"s.x": "2",
		"s.y": "3",
		"t.z": "4",
	}
	var sb strings.Builder
	Format(&sb, m, 2)
	want := "a = 1\n[s]\nx = 2\ny = 3\nt.z = 4\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestFormatNestedSectionWins(t *testing.T) {
	m := map[string]string{
		"a.b.c": "1",
		"a.b.d": "2",
	}
	var sb strings.Builder
	Format(&sb, m, 2)
	want := "[a.b]\nc = 1\nd = 2\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestFormatDoesNotMutateInput(t *testing.T) {
	m := map[string]string{"a": "1", "s.x": "2", "s.y": "3"}
	snapshot := maps.Clone(m)
	var sb strings.Builder
	Format(&sb, m, 2)
	if !maps.Equal(m, snapshot) {
		t.Errorf("input map changed: %v", m)
	}
}

func TestFormatIdempotent(t *testing.T) {
	m := map[string]string{
		"top":     "1",
		"s.a":     "2",
		"s.b":     "3",
		"s.sub.c": "4",
	}
	var first strings.Builder
	Format(&first, m, 2)

	reparsed, err := parser.ParseString(first.String(), dialect.Dialect{})
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	var second strings.Builder
	Format(&second, reparsed, 2)

	if first.String() != second.String() {
		t.Errorf("not idempotent:\n first  %q\n second %q", first.String(), second.String())
	}
}
