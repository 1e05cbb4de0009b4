// Package decode maps parsed CNI text onto Go values with reflection, the
// way encoding/json fills structs. Dotted keys become nested struct fields
// or map entries. Unlike the plain parser, duplicate keys are rejected here,
// and every error carries the position of the offending value.
package decode

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"cniutil/internal/api"
	"cniutil/internal/dialect"
	"cniutil/internal/parser"
	"cniutil/internal/source"
)

// entry is one parsed value with the position it started at.
type entry struct {
	value string
	pos   source.LineCol
}

// Unmarshal parses text under dialect d and stores the result in the value
// pointed to by v. v must be a non-nil pointer to a struct or a
// string-keyed map.
//
// Struct fields match keys by their `cni` tag, their exact name, or their
// name with the first letter lowercased. A tag of "-" skips the field.
// Fields of struct, map or pointer-to-those types consume the subtree under
// their key; other fields consume a single value.
func Unmarshal(text string, d dialect.Dialect, v any) error {
	entries, err := parse(text, d)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("decode target must be a non-nil pointer")
	}
	return decodeTree(entries, rv.Elem())
}

func parse(text string, d dialect.Dialect) (map[string]entry, error) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("input.cni", []byte(text)))

	p := parser.New(f, d)
	entries := make(map[string]entry)
	for p.Scan() {
		pair := p.Pair()
		if _, ok := entries[pair.Key]; ok {
			return nil, &Error{Pos: pair.Pos, Kind: KindDuplicateKey, Key: pair.Key}
		}
		entries[pair.Key] = entry{value: pair.Value, pos: pair.Pos}
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func decodeTree(entries map[string]entry, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeTree(entries, rv.Elem())
	case reflect.Struct:
		return decodeStruct(entries, rv)
	case reflect.Map:
		return decodeMap(entries, rv)
	default:
		return fmt.Errorf("cannot decode into %s", rv.Type())
	}
}

// isTree reports whether t consumes a subtree rather than a single value.
func isTree(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func decodeStruct(entries map[string]entry, rv reflect.Value) error {
	t := rv.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, hasTag := field.Tag.Lookup("cni")
		if name == "-" {
			continue
		}
		if !hasTag {
			name = lowerFirst(field.Name)
		}

		fv := rv.Field(i)
		if isTree(field.Type) {
			sub := api.SubTree(entries, name)
			if len(sub) == 0 && !hasTag {
				sub = api.SubTree(entries, field.Name)
			}
			if len(sub) == 0 {
				continue
			}
			if err := decodeTree(sub, fv); err != nil {
				return err
			}
			continue
		}

		e, ok := entries[name]
		if !ok && !hasTag {
			e, ok = entries[field.Name]
		}
		if !ok {
			continue
		}
		if err := decodeValue(e, fv, name); err != nil {
			return err
		}
	}
	return nil
}

func decodeMap(entries map[string]entry, rv reflect.Value) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return fmt.Errorf("cannot decode into %s: map keys must be strings", t)
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(t))
	}

	if isTree(t.Elem()) {
		for _, sect := range api.SectionLeaves(entries, "") {
			ev := reflect.New(t.Elem()).Elem()
			if err := decodeTree(api.SubTree(entries, sect), ev); err != nil {
				return err
			}
			rv.SetMapIndex(reflect.ValueOf(sect).Convert(t.Key()), ev)
		}
		if leaves := api.SubLeaves(entries, ""); len(leaves) > 0 {
			key := slices.Sorted(maps.Keys(leaves))[0]
			return &Error{
				Pos:   leaves[key].pos,
				Kind:  KindUnsupported,
				Key:   key,
				Cause: fmt.Errorf("map of %s cannot hold a plain value", t.Elem()),
			}
		}
		return nil
	}

	for key, e := range api.SubLeaves(entries, "") {
		ev := reflect.New(t.Elem()).Elem()
		if err := decodeValue(e, ev, key); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), ev)
	}
	// nested keys have nowhere to go in a map of plain values
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		if strings.Contains(key, ".") {
			return &Error{
				Pos:   entries[key].pos,
				Kind:  KindUnsupported,
				Key:   key,
				Cause: fmt.Errorf("map of %s cannot hold a subtree", t.Elem()),
			}
		}
	}
	return nil
}

func decodeValue(e entry, rv reflect.Value, key string) error {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(e.value)
	case reflect.Bool:
		b, err := strconv.ParseBool(e.value)
		if err != nil {
			return &Error{Pos: e.pos, Kind: KindBool, Key: key, Cause: err}
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(e.value, 10, rv.Type().Bits())
		if err != nil {
			return &Error{Pos: e.pos, Kind: KindInt, Key: key, Cause: err}
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(e.value, 10, rv.Type().Bits())
		if err != nil {
			return &Error{Pos: e.pos, Kind: KindInt, Key: key, Cause: err}
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(e.value, rv.Type().Bits())
		if err != nil {
			return &Error{Pos: e.pos, Kind: KindFloat, Key: key, Cause: err}
		}
		rv.SetFloat(f)
	default:
		return &Error{
			Pos:   e.pos,
			Kind:  KindUnsupported,
			Key:   key,
			Cause: fmt.Errorf("cannot decode into %s", rv.Type()),
		}
	}
	return nil
}
