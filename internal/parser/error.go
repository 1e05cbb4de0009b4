package parser

import "fmt"

// Kind is the type of syntax error the strict parser can produce.
type Kind uint8

const (
	// ExpectedSectionEnd: the closing bracket of a section header is missing.
	ExpectedSectionEnd Kind = iota
	// InvalidKey: a key or section name starts or ends with a dot.
	InvalidKey
	// ExpectedKey: a key was expected but missing.
	ExpectedKey
	// ExpectedEquals: an equals sign was expected but missing.
	ExpectedEquals
	// UnterminatedRaw: a raw value is not terminated before end of input.
	UnterminatedRaw
)

func (k Kind) String() string {
	switch k {
	case ExpectedSectionEnd:
		return `expected "]"`
	case InvalidKey:
		return "invalid key, can not start or end with a dot"
	case ExpectedKey:
		return "expected key"
	case ExpectedEquals:
		return `expected "="`
	case UnterminatedRaw:
		return "unterminated raw value"
	}
	return "unknown error"
}

// Error is a fatal parse error with its 1-based position. For UnterminatedRaw
// the position is the opening backtick of the value, not the end of input.
type Error struct {
	Line uint32
	Col  uint32
	Kind Kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Kind)
}
