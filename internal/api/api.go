// Package api provides the access functions the CNI specification recommends
// for working with parsed key/value maps: SubTree, SubLeaves, WalkTree,
// WalkLeaves, SectionTree and SectionLeaves. ListTree/ListLeaves and
// KeyTree/KeyLeaves fall out of ranging over the returned maps.
//
// All functions treat the empty section name as the top level.
package api

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// matchSection reports whether key belongs to section and returns the
// remainder of the key after the section prefix and delimiter.
func matchSection(key, section string) (string, bool) {
	if section == "" {
		return key, true
	}
	if len(key) > len(section) && key[len(section)] == '.' && strings.HasPrefix(key, section) {
		return key[len(section)+1:], true
	}
	return "", false
}

// SubTree returns the child elements of the given section. The section name
// and delimiter are removed from the keys of the result.
func SubTree[V any](m map[string]V, section string) map[string]V {
	out := make(map[string]V)
	for key, value := range m {
		if rest, ok := matchSection(key, section); ok {
			out[rest] = value
		}
	}
	return out
}

// SubLeaves returns the direct child elements of the given section. The
// section name and delimiter are removed from the keys of the result.
func SubLeaves[V any](m map[string]V, section string) map[string]V {
	out := make(map[string]V)
	for key, value := range m {
		if rest, ok := matchSection(key, section); ok && !strings.Contains(rest, ".") {
			out[rest] = value
		}
	}
	return out
}

// WalkTree iterates over the child elements of the given section. The keys
// keep the section prefix. The order is unspecified.
func WalkTree[V any](m map[string]V, section string) iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for key, value := range m {
			if _, ok := matchSection(key, section); !ok {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

// WalkLeaves iterates over the direct child elements of the given section.
// The keys keep the section prefix. The order is unspecified.
func WalkLeaves[V any](m map[string]V, section string) iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for key, value := range m {
			rest, ok := matchSection(key, section)
			if !ok || strings.Contains(rest, ".") {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

// SectionTree returns the sorted names of all subsections of the given
// section, direct or nested. A name appearing here does not mean the source
// spelled it as a section header.
func SectionTree[V any](m map[string]V, section string) []string {
	set := make(map[string]struct{})
	for key := range m {
		rest, ok := matchSection(key, section)
		if !ok {
			continue
		}
		// every dot boundary in the remainder names a section
		for i, r := range rest {
			if r == '.' {
				set[rest[:i]] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// SectionLeaves returns the sorted names of the direct subsections of the
// given section.
func SectionLeaves[V any](m map[string]V, section string) []string {
	set := make(map[string]struct{})
	for key := range m {
		rest, ok := matchSection(key, section)
		if !ok {
			continue
		}
		if i := strings.IndexByte(rest, '.'); i > 0 {
			set[rest[:i]] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}
