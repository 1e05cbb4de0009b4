package linter

import (
	"fmt"
	"slices"
	"testing"

	"cniutil/internal/diag"
	"cniutil/internal/dialect"
	"cniutil/internal/source"
)

func lintText(t *testing.T, text string, d dialect.Dialect) []string {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cni", []byte(text))
	bag := diag.NewBag(64)
	Lint(fs.Get(id), d, diag.BagReporter{Bag: bag})

	got := make([]string, 0, bag.Len())
	for _, item := range bag.Items() {
		got = append(got, fmt.Sprintf("%s %s: %s", item.Span, item.Severity, item.Message))
	}
	return got
}

func checkLint(t *testing.T, text string, d dialect.Dialect, want []string) {
	t.Helper()
	got := lintText(t, text, d)
	if !slices.Equal(got, want) {
		t.Errorf("lint(%q):\n got  %q\n want %q", text, got, want)
	}
}

func TestCleanInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"pair", "key = value\n"},
		{"full file", "key = value\n[section]\na.b = `raw`\n# comment\n"},
		{"blank lines between pairs", "a = 1\n\n\nb = 2\n"},
		{"indented pair", "a = 1\n  b = 2\n"},
		{"escaped backtick in raw value", "a = `x``y`\n"},
		{"raw value closed at end of input", "a = `v`"},
		{"raw value over several lines", "a = `one\ntwo\nthree`\n"},
		{"comment at end of input", "# trailing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkLint(t, tc.input, dialect.Dialect{}, []string{})
		})
	}
}

func TestUnnecessaryWhitespace(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"leading spaces before first statement",
			"  \nkey = value\n",
			[]string{"1:1-2:1 info: unnecessary whitespace"},
		},
		{
			"whitespace line between pairs",
			"a = 1\n   \nb = 2\n",
			[]string{"2:1-3:1 info: unnecessary whitespace"},
		},
		{
			"run crossing a blank line",
			"a = 1\n \n\nb = 2\n",
			[]string{"2:1-4:1 info: unnecessary whitespace"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkLint(t, tc.input, dialect.Dialect{}, tc.want)
		})
	}
}

func TestHeadings(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"empty", "[]",
			[]string{"1:2-1:3 info: This section heading is empty. You can avoid empty section headings by putting items in this section at the start of the file."},
		},
		{
			"only whitespace", "[ ]",
			[]string{"1:2-1:4 info: This section heading is empty. You can avoid empty section headings by putting items in this section at the start of the file."},
		},
		{
			"line break before name", "[\nsection]",
			[]string{"1:2-2:1 info: A line break here may be confusing."},
		},
		{
			"line break after name", "[section\n]",
			[]string{"1:9-2:1 info: A line break here may be confusing."},
		},
		{
			"comment before name", "[#c\nsection]",
			[]string{"1:2-1:4 info: This is not a good place to put a comment, consider putting it before the section heading."},
		},
		{
			"comment after name", "[section#c\n]",
			[]string{"1:9-1:11 info: This is not a good place to put a comment, consider putting it after the section heading."},
		},
		{
			"unterminated at end of input", "[section",
			[]string{"1:9-1:10 syntax error: Expected ']' for end of section heading."},
		},
		{
			"space inside name",
			"[section wrong]",
			[]string{
				"1:11-1:12 syntax error: Expected ']' for end of section heading.",
				"1:15-1:16 syntax error: Expected '=' after key.",
			},
		},
		{
			"stray closing bracket", "]\n",
			[]string{"1:2-1:3 syntax error: Unexpected closing square bracket."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkLint(t, tc.input, dialect.Dialect{}, tc.want)
		})
	}
}

func TestKeys(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"leading dot", ".key = 1",
			[]string{"1:1-1:2 syntax error: A key or section heading can not start with a dot."},
		},
		{
			"trailing dot", "key. = 1",
			[]string{"1:5-1:6 syntax error: A key or section heading can not end with a dot."},
		},
		{
			"raw key", "`key` = 1",
			[]string{"1:1-1:6 syntax error: A key or section heading can not be a raw value."},
		},
		{
			"backtick after key", "key` = 1",
			[]string{"1:5-1:6 syntax error: A key or section heading can not be a raw value."},
		},
		{
			"missing equals at end of input", "key\n",
			[]string{"1:4-1:5 syntax error: Expected '=' after key."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkLint(t, tc.input, dialect.Dialect{}, tc.want)
		})
	}
}

func TestStatements(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"equals without key", "=",
			[]string{"1:1-1:2 syntax error: Expected key before '='."},
		},
		{
			"equals then orphaned value",
			"= 1\n",
			[]string{
				"1:1-1:2 syntax error: Expected key before '='.",
				"1:4-1:5 syntax error: Expected '=' after key.",
			},
		},
		{
			"value without key", "*oops\n",
			[]string{"1:1-1:2 syntax error: Expected key and '=' before value."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkLint(t, tc.input, dialect.Dialect{}, tc.want)
		})
	}
}

func TestRawValues(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"unescaped backtick",
			"a = `x`y`\n",
			[]string{"1:8-1:9 syntax error: Unescaped backtick inside raw value. Use '``' to represent a backtick in a raw value."},
		},
		{
			"unterminated",
			"a = `raw\n",
			[]string{"1:5-2:1 syntax error: Expected '`' at end of raw value."},
		},
		{
			"unterminated with statement hint",
			"a = `raw\nkey = value\n",
			[]string{
				"1:5-3:1 syntax error: Expected '`' at end of raw value.",
				"2:1-2:2 info: This looks like a new statement, did you forget to put a backtick here?",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkLint(t, tc.input, dialect.Dialect{}, tc.want)
		})
	}
}

func TestDialects(t *testing.T) {
	t.Run("semicolon comment needs ini", func(t *testing.T) {
		checkLint(t, "; note\n", dialect.Dialect{INI: true}, []string{})
		checkLint(t, "; note\n", dialect.Dialect{}, []string{
			"1:1-1:2 syntax error: Expected key and '=' before value.",
		})
	})
	t.Run("extended key chars need more-keys", func(t *testing.T) {
		checkLint(t, "key/sub = 1\n", dialect.Dialect{MoreKeys: true}, []string{})
	})
}

// TestNeverAborts feeds the linter pathological input and checks two global
// guarantees: the scan terminates, and diagnostics come out in source order.
func TestNeverAborts(t *testing.T) {
	inputs := []string{
		"]]][[[===```\x00\n.a.=`\n=",
		"[#\n[#\n[#\n",
		"`````",
		"= = = = =\n. . . . .\n",
		"[\x00]\n\x00\x00\x00\n",
	}
	for _, input := range inputs {
		fs := source.NewFileSet()
		id := fs.AddVirtual("test.cni", []byte(input))
		bag := diag.NewBag(1024)
		Lint(fs.Get(id), dialect.Dialect{}, diag.BagReporter{Bag: bag})

		if bag.Len() == 0 {
			t.Errorf("lint(%q) found nothing", input)
		}
		items := bag.Items()
		for i := 1; i < len(items); i++ {
			if items[i].Span.Start.Before(items[i-1].Span.Start) {
				t.Errorf("lint(%q): diagnostic %d at %s comes before %d at %s",
					input, i, items[i].Span.Start, i-1, items[i-1].Span.Start)
			}
		}
	}
}
