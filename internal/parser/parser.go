// Package parser implements the strict CNI parser: a single-pass, pull-based
// walk of the grammar that yields fully qualified key/value pairs in source
// order, or stops at the first syntax error.
package parser

import (
	"strings"
	"unicode"

	"cniutil/internal/dialect"
	"cniutil/internal/scanner"
	"cniutil/internal/source"
)

// Pair is one parsed statement. Pos is the position of the start of the
// value, kept for consumers that need to attribute later conversion errors.
type Pair struct {
	Key   string
	Value string
	Pos   source.LineCol
}

// Parser visits all key/value pairs in declaration order, even pairs that a
// later statement overwrites. Usage follows the bufio.Scanner pattern:
//
//	p := parser.New(file, d)
//	for p.Scan() {
//		pair := p.Pair()
//		...
//	}
//	if err := p.Err(); err != nil { ... }
//
// The first error is terminal: Scan keeps returning false and Err keeps
// returning the same error afterwards.
type Parser struct {
	cur     *scanner.Cursor
	d       dialect.Dialect
	section string
	pair    Pair
	lastPos source.LineCol
	hasPos  bool
	err     *Error
	done    bool
}

// New creates a parser over the given file.
func New(f *source.File, d dialect.Dialect) *Parser {
	return &Parser{
		cur: scanner.New(f),
		d:   d,
	}
}

// Scan advances to the next key/value pair. It returns false when input is
// exhausted or a syntax error occurred; distinguish via Err.
func (p *Parser) Scan() bool {
	if p.done {
		return false
	}
	p.hasPos = false

	for {
		p.skipWS()
		c, ok := p.cur.Peek()
		if !ok {
			p.done = true
			return false
		}

		if dialect.IsCommentStart(c, p.d) {
			p.skipComment()
			continue
		}

		if c == '[' {
			if !p.scanSection() {
				return false
			}
			continue
		}

		// this should be a key/value pair
		return p.scanPair()
	}
}

// Pair returns the statement produced by the last successful Scan.
func (p *Parser) Pair() Pair {
	return p.pair
}

// Err returns the terminal error, or nil after a clean end of input.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// LastPos returns the position of the most recently scanned value. The
// second result is false before the first pair and after an error.
func (p *Parser) LastPos() (source.LineCol, bool) {
	return p.lastPos, p.hasPos
}

func (p *Parser) scanSection() bool {
	p.cur.Next() // consume [

	pos := p.cur.Pos()
	p.skipWS()

	// better error position before the closing bracket check moves it
	if _, ok := p.cur.Peek(); !ok {
		return p.fail(pos, ExpectedSectionEnd)
	}

	// the section name may be empty
	key, valid := p.scanKey()
	if !valid {
		return p.fail(pos, InvalidKey)
	}
	p.section = key

	pos = p.cur.Pos()
	p.skipWS()

	if r, ok := p.cur.Next(); !ok || r != ']' {
		return p.fail(pos, ExpectedSectionEnd)
	}
	p.skipComment()
	return true
}

func (p *Parser) scanPair() bool {
	pos := p.cur.Pos()
	key, valid := p.scanKey()
	if !valid {
		return p.fail(pos, InvalidKey)
	}
	// this key can not be empty
	if key == "" {
		return p.fail(pos, ExpectedKey)
	}
	// do not prepend an empty section
	if p.section != "" {
		key = p.section + "." + key
	}

	pos = p.cur.Pos()
	p.skipWS()

	if r, ok := p.cur.Next(); !ok || r != '=' {
		return p.fail(pos, ExpectedEquals)
	}

	p.skipWS()

	valuePos := p.cur.Pos()
	value, err := p.scanValue()
	if err != nil {
		p.err = err
		p.done = true
		return false
	}

	p.skipComment()

	p.pair = Pair{Key: key, Value: value, Pos: valuePos}
	p.lastPos = valuePos
	p.hasPos = true
	return true
}

// scanKey accumulates key characters. It reports valid=false when the key
// starts or ends with a dot.
func (p *Parser) scanKey() (key string, valid bool) {
	var sb strings.Builder
	for {
		c, ok := p.cur.Peek()
		if !ok || !dialect.IsKeyChar(c, p.d) {
			break
		}
		p.cur.Next()
		sb.WriteRune(c)
	}
	key = sb.String()
	if strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return "", false
	}
	return key, true
}

func (p *Parser) scanValue() (string, *Error) {
	if c, ok := p.cur.Peek(); ok && c == '`' {
		return p.scanRawValue()
	}

	// bareword: runs until comment start or vertical whitespace, then the
	// surrounding ordinary whitespace is trimmed off
	var sb strings.Builder
	for {
		c, ok := p.cur.Peek()
		if !ok || !dialect.IsValueChar(c, p.d) {
			break
		}
		p.cur.Next()
		sb.WriteRune(c)
	}
	return strings.TrimSpace(sb.String()), nil
}

// scanRawValue consumes a backtick-delimited value. A doubled backtick
// escapes a literal backtick. An unterminated value fails at the opening
// backtick to aid diagnosis.
func (p *Parser) scanRawValue() (string, *Error) {
	open := p.cur.Pos()
	p.cur.Next() // consume backtick

	var sb strings.Builder
	for {
		if c, ok := p.cur.Peek(); ok && c == '`' {
			p.cur.Next()
			if c, ok := p.cur.Peek(); ok && c == '`' {
				// escaped backtick
				p.cur.Next()
				sb.WriteRune('`')
				continue
			}
			// end of the value
			return sb.String(), nil
		}
		c, ok := p.cur.Next()
		if !ok {
			return "", &Error{Line: open.Line, Col: open.Col, Kind: UnterminatedRaw}
		}
		sb.WriteRune(c)
	}
}

func (p *Parser) skipWS() {
	for {
		c, ok := p.cur.Peek()
		if !ok || !unicode.IsSpace(c) {
			break
		}
		p.cur.Next()
	}
}

// skipComment skips whitespace and, when it lands on a comment start, the
// rest of the line including the line break. It must not skip the comment
// when only line ends were crossed, hence the peek check.
func (p *Parser) skipComment() {
	p.skipWS()
	if c, ok := p.cur.Peek(); ok && dialect.IsCommentStart(c, p.d) {
		for {
			r, ok := p.cur.Next()
			if !ok || dialect.IsVerticalWS(r) {
				break
			}
		}
	}
}

func (p *Parser) fail(pos source.LineCol, kind Kind) bool {
	p.err = &Error{Line: pos.Line, Col: pos.Col, Kind: kind}
	p.done = true
	return false
}

// Parse folds the file into a flat key/value map. Duplicate keys are not an
// error: later statements overwrite earlier ones.
func Parse(f *source.File, d dialect.Dialect) (map[string]string, error) {
	p := New(f, d)
	result := make(map[string]string)
	for p.Scan() {
		pair := p.Pair()
		result[pair.Key] = pair.Value
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(text string, d dialect.Dialect) (map[string]string, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("input.cni", []byte(text))
	return Parse(fs.Get(id), d)
}
