// Package format renders key/value maps back into CNI text.
package format

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"cniutil/internal/api"
	"cniutil/internal/dialect"
)

// Value renders a single value, escaping it as a raw value when needed. The
// comment characters of every dialect are escaped so the output parses the
// same either way.
func Value(v string) string {
	if v == "" {
		return "#empty"
	}
	needsRaw := strings.ContainsFunc(v, func(r rune) bool {
		return r == '`' || r == '#' || r == ';' || dialect.IsVerticalWS(r)
	})
	if needsRaw {
		return "`" + strings.ReplaceAll(v, "`", "``") + "`"
	}
	return v
}

// compareKeys orders keys so that the fewest section headings are needed:
// keys without dots first, then alphabetically grouped by (sub)section.
func compareKeys(a, b string) int {
	aDotted, bDotted := strings.Contains(a, "."), strings.Contains(b, ".")
	if aDotted != bDotted {
		if aDotted {
			return 1
		}
		return -1
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := range min(len(as), len(bs)) {
		if c := cmp.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(as), len(bs))
}

// Marshal turns a key/value map into CNI text with as few section headings
// as possible. When a key has multiple dot-separated parts, the first one
// becomes the section name.
func Marshal(m map[string]string) string {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, compareKeys)

	var sb strings.Builder
	section := ""
	for _, key := range keys {
		name := key
		if pos := strings.IndexByte(key, '.'); pos >= 0 {
			if s := key[:pos]; s != section {
				fmt.Fprintf(&sb, "[%s]\n", s)
				section = s
			}
			name = key[pos+1:]
		}
		fmt.Fprintf(&sb, "%s = %s\n", name, Value(m[key]))
	}
	return sb.String()
}

// writePlain prints every entry with its full key, sorted, no headings.
func writePlain(w io.Writer, m map[string]string) {
	for _, key := range slices.Sorted(maps.Keys(m)) {
		fmt.Fprintf(w, "%s = %s\n", key, Value(m[key]))
	}
}

// Format regroups a key/value map by sections and writes it as CNI text.
// sectionThreshold is the number of items a section needs before it gets its
// own heading; zero or less disables headings entirely. Longer section paths
// win over their parents, so deeply nested groups keep the shortest keys.
func Format(w io.Writer, m map[string]string, sectionThreshold int) {
	if sectionThreshold <= 0 {
		writePlain(w, m)
		return
	}

	rest := maps.Clone(m)

	// top level leaves come first, without a heading
	writePlain(w, api.SubLeaves(rest, ""))
	maps.DeleteFunc(rest, func(key, _ string) bool {
		return !strings.Contains(key, ".")
	})

	sections := api.SectionTree(rest, "")
	slices.SortFunc(sections, func(a, b string) int {
		// long before short, then alphabetically
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, section := range sections {
		sub := api.SubTree(rest, section)
		if len(sub) < sectionThreshold {
			continue
		}
		fmt.Fprintf(w, "[%s]\n", section)
		writePlain(w, sub)
		prefix := section + "."
		maps.DeleteFunc(rest, func(key, _ string) bool {
			return strings.HasPrefix(key, prefix)
		})
	}

	// whatever did not make it into a section keeps its full key
	writePlain(w, rest)
}
