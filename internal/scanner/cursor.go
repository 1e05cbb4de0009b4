// Package scanner provides the position-tracked character cursor shared by
// the strict parser and the linter.
package scanner

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"cniutil/internal/dialect"
	"cniutil/internal/source"
)

// Cursor walks a file one Unicode scalar value at a time while maintaining a
// running 1-based line/column position. Columns count scalar values, not
// bytes. A vertical-whitespace unit resets the column to 1 and increments the
// line exactly once; a CRLF pair is one unit (the \r advances the column, the
// \n advances the line).
type Cursor struct {
	file *source.File
	off  uint32
	pos  source.LineCol
}

// New creates a cursor at the start of the file, position (1,1).
func New(f *source.File) *Cursor {
	if _, err := safecast.Conv[uint32](len(f.Content)); err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return &Cursor{
		file: f,
		off:  0,
		pos:  source.LineCol{Line: 1, Col: 1},
	}
}

// EOF reports whether the end of the file has been reached.
func (c *Cursor) EOF() bool {
	return c.off >= uint32(len(c.file.Content))
}

// Pos returns the position of the next character to be consumed.
func (c *Cursor) Pos() source.LineCol {
	return c.pos
}

// Peek returns the next character without consuming it.
func (c *Cursor) Peek() (rune, bool) {
	if c.EOF() {
		return 0, false
	}
	b := c.file.Content[c.off]
	if b < utf8.RuneSelf { // fast-path ASCII
		return rune(b), true
	}
	r, _ := utf8.DecodeRune(c.file.Content[c.off:])
	return r, true
}

// Next consumes and returns the next character, updating the position.
func (c *Cursor) Next() (rune, bool) {
	if c.EOF() {
		return 0, false
	}
	r, sz := rune(c.file.Content[c.off]), 1
	if r >= utf8.RuneSelf {
		r, sz = utf8.DecodeRune(c.file.Content[c.off:])
	}
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("rune size overflow: %w", err))
	}
	c.off += usz

	switch {
	case r == '\r' && c.peekByte() == '\n':
		// first half of a CRLF pair, the \n will advance the line
		c.pos.Col++
	case dialect.IsVerticalWS(r):
		c.pos.Line++
		c.pos.Col = 1
	default:
		c.pos.Col++
	}
	return r, true
}

// Eat consumes the next character if it equals r.
func (c *Cursor) Eat(r rune) bool {
	if n, ok := c.Peek(); ok && n == r {
		c.Next()
		return true
	}
	return false
}

func (c *Cursor) peekByte() byte {
	if c.EOF() {
		return 0
	}
	return c.file.Content[c.off]
}
