package decode

import (
	"fmt"

	"cniutil/internal/source"
)

// Kind discriminates decode failures. Syntax errors are not re-wrapped; the
// parser's own error passes through Unmarshal unchanged.
type Kind uint8

const (
	// KindInt marks a malformed integer value.
	KindInt Kind = iota + 1
	// KindFloat marks a malformed float value.
	KindFloat
	// KindBool marks a malformed boolean value.
	KindBool
	// KindDuplicateKey marks a key that appears more than once. The format
	// itself allows this, but silently keeping one of the values might have
	// unintended consequences.
	KindDuplicateKey
	// KindUnsupported marks a Go type or shape the decoder cannot fill.
	KindUnsupported
)

// Error is a decode failure with the position of the offending value.
type Error struct {
	Pos  source.LineCol
	Kind Kind
	// Key is the offending key, when one is known.
	Key   string
	Cause error
}

func (e *Error) Error() string {
	prefix := fmt.Sprintf("line %d:%d: ", e.Pos.Line, e.Pos.Col)
	switch e.Kind {
	case KindInt:
		return prefix + fmt.Sprintf("malformed integer: %v", e.Cause)
	case KindFloat:
		return prefix + fmt.Sprintf("malformed float: %v", e.Cause)
	case KindBool:
		return prefix + "malformed boolean"
	case KindDuplicateKey:
		return prefix + fmt.Sprintf("key '%s' appears multiple times", e.Key)
	case KindUnsupported:
		return prefix + fmt.Sprintf("cannot decode key '%s': %v", e.Key, e.Cause)
	}
	return prefix + "unknown decode error"
}

func (e *Error) Unwrap() error { return e.Cause }
