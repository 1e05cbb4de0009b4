// Package linter implements the best-effort CNI linter. It recognizes the
// same tokens as the strict parser but never hard-stops on malformed input:
// every branch degrades to "report a diagnostic, resynchronize, keep
// scanning". Each dispatch iteration consumes at least one character, so the
// scan always terminates.
package linter

import (
	"unicode"

	"cniutil/internal/diag"
	"cniutil/internal/dialect"
	"cniutil/internal/scanner"
	"cniutil/internal/source"
)

type linter struct {
	cur *scanner.Cursor
	d   dialect.Dialect
	r   diag.Reporter
}

// Lint walks the whole file and reports findings to r in source order.
func Lint(f *source.File, d dialect.Dialect, r diag.Reporter) {
	lt := &linter{
		cur: scanner.New(f),
		d:   d,
		r:   r,
	}
	lt.run()
}

func (lt *linter) run() {
	for {
		c, ok := lt.cur.Peek()
		if !ok {
			break
		}

		switch {
		case unicode.IsSpace(c):
			lt.scanWhitespace()

		case dialect.IsCommentStart(c, lt.d):
			lt.skipComment()

		case c == ']':
			lt.cur.Next()
			lt.syntax(diag.LintUnexpectedBracket, source.Point(lt.cur.Pos()),
				"Unexpected closing square bracket.")

		case c == '[':
			lt.scanHeading()

		// a backtick is not a key, but it looks like someone tried to use
		// a raw value for a key, so route it through the key checker for
		// the appropriate message
		case dialect.IsKeyChar(c, lt.d) || c == '`':
			lt.scanStatement()

		case c == '=':
			lt.syntax(diag.LintExpectedKey, source.Point(lt.cur.Pos()),
				"Expected key before '='.")
			lt.cur.Next()

		default:
			lt.syntax(diag.LintExpectedStatement, source.Point(lt.cur.Pos()),
				"Expected key and '=' before value.")
			// pretend the rest of the line is a comment so we do not emit
			// a diagnostic for every character on it
			lt.skipComment()
		}
	}
}

// scanWhitespace reports runs of whitespace that cross a line break and end
// right before a statement. Pure blank lines are fine and stay silent.
func (lt *linter) scanWhitespace() {
	for {
		c, ok := lt.cur.Peek()
		if !ok || !dialect.IsVerticalWS(c) {
			break
		}
		lt.cur.Next()
	}

	start := lt.cur.Pos()
	for {
		c, ok := lt.cur.Peek()
		if !ok {
			break
		}
		if dialect.IsVerticalWS(c) {
			lt.cur.Next()
			if n, ok := lt.cur.Peek(); ok && !unicode.IsSpace(n) {
				// the run ends here, right before a statement
				lt.info(diag.LintUnnecessaryWhitespace, source.Between(start, lt.cur.Pos()),
					"unnecessary whitespace")
				break
			}
		} else if !unicode.IsSpace(c) {
			break
		} else {
			lt.cur.Next()
		}
	}
}

// skipComment consumes to the end of the physical line, including the break.
func (lt *linter) skipComment() {
	for {
		c, ok := lt.cur.Peek()
		if !ok || dialect.IsVerticalWS(c) {
			break
		}
		lt.cur.Next()
	}
	lt.cur.Next()
}

func (lt *linter) skipWS() {
	for {
		c, ok := lt.cur.Peek()
		if !ok || !unicode.IsSpace(c) {
			break
		}
		lt.cur.Next()
	}
}

// scanHeading lints one section heading. It independently tracks the end
// positions of the optional pieces between the brackets, then decides which
// findings apply once (and if) the terminating bracket shows up.
func (lt *linter) scanHeading() {
	lt.cur.Next() // consume [
	start := lt.cur.Pos()

	// end positions of the possible heading pieces
	var wsBefore, commentBefore, word, wsAfter, commentAfter *source.LineCol

	lt.skipWS()
	if p := lt.cur.Pos(); p != start {
		wsBefore = &p
	}

	// leading comment(s); do not report yet, the heading may be broken
	for {
		c, ok := lt.cur.Peek()
		if !ok || !dialect.IsCommentStart(c, lt.d) {
			break
		}
		lt.cur.Next()
		for {
			c, ok := lt.cur.Peek()
			if !ok || dialect.IsVerticalWS(c) {
				break
			}
			lt.cur.Next()
		}
		p := lt.cur.Pos()
		commentBefore = &p
		lt.skipWS()
	}

	// this must be the actual section name
	lt.checkKey()

	anchor := start
	if wsBefore != nil {
		anchor = *wsBefore
	}
	if commentBefore != nil {
		anchor = *commentBefore
	}
	if p := lt.cur.Pos(); p != anchor {
		word = &p
	}

	lt.skipWS()
	if word != nil {
		anchor = *word
	}
	if p := lt.cur.Pos(); p != anchor {
		wsAfter = &p
	}

	// trailing comment(s)
	for {
		c, ok := lt.cur.Peek()
		if !ok || !dialect.IsCommentStart(c, lt.d) {
			break
		}
		lt.cur.Next()
		for {
			c, ok := lt.cur.Peek()
			if !ok || dialect.IsVerticalWS(c) {
				break
			}
			lt.cur.Next()
		}
		p := lt.cur.Pos()
		commentAfter = &p
		lt.skipWS()
	}

	if r, ok := lt.cur.Next(); !ok || r != ']' {
		lt.syntax(diag.LintExpectedSectionEnd, source.Point(lt.cur.Pos()),
			"Expected ']' for end of section heading.")
		return
	}

	// heading terminated properly, now report on its contents
	end := lt.cur.Pos()

	if word == nil {
		if commentBefore != nil {
			s := start
			if wsBefore != nil {
				s = *wsBefore
			}
			lt.info(diag.LintHeadingCommentOnly, source.Between(s, end),
				"This section heading only contains a comment, is this intentional?")
		} else {
			lt.info(diag.LintHeadingEmpty, source.Between(start, end),
				"This section heading is empty. You can avoid empty section headings by putting items in this section at the start of the file.")
		}
	}

	if commentBefore != nil {
		s := start
		if wsBefore != nil {
			s = *wsBefore
		}
		lt.info(diag.LintHeadingCommentBefore, source.Between(s, *commentBefore),
			"This is not a good place to put a comment, consider putting it before the section heading.")
	} else if wsBefore != nil && wsBefore.Line != start.Line {
		lt.info(diag.LintHeadingLineBreak, source.Between(start, *wsBefore),
			"A line break here may be confusing.")
	}

	if commentAfter != nil {
		s := word
		if wsAfter != nil {
			s = wsAfter
		}
		if s == nil {
			s = &start
		}
		lt.info(diag.LintHeadingCommentAfter, source.Between(*s, *commentAfter),
			"This is not a good place to put a comment, consider putting it after the section heading.")
	} else if wsAfter != nil && word != nil && wsAfter.Line != word.Line {
		lt.info(diag.LintHeadingLineBreak, source.Between(*word, *wsAfter),
			"A line break here may be confusing.")
	}
}

// checkKey validates a key or section name in place, reporting a leading
// dot, every trailing-dot boundary, and raw (backtick) pseudo-keys.
func (lt *linter) checkKey() {
	var pseudoRaw *source.LineCol

	if c, ok := lt.cur.Peek(); ok && c == '.' {
		lt.syntax(diag.LintKeyLeadingDot, source.Point(lt.cur.Pos()),
			"A key or section heading can not start with a dot.")
	} else if ok && c == '`' {
		p := lt.cur.Pos()
		pseudoRaw = &p
		lt.cur.Next()
	}

	for {
		c, ok := lt.cur.Peek()
		if !ok || !dialect.IsKeyChar(c, lt.d) {
			break
		}
		lt.cur.Next()
		if n, nok := lt.cur.Peek(); nok && !dialect.IsKeyChar(n, lt.d) && c == '.' {
			lt.syntax(diag.LintKeyTrailingDot, source.Point(lt.cur.Pos()),
				"A key or section heading can not end with a dot.")
		}
	}

	if pseudoRaw != nil {
		if c, ok := lt.cur.Peek(); ok && c == '`' {
			lt.cur.Next()
		}
		lt.syntax(diag.LintRawKey, source.Between(*pseudoRaw, lt.cur.Pos()),
			"A key or section heading can not be a raw value.")
	} else if c, ok := lt.cur.Peek(); ok && c == '`' {
		lt.cur.Next()
		lt.syntax(diag.LintRawKey, source.Point(lt.cur.Pos()),
			"A key or section heading can not be a raw value.")
	}
}

// scanStatement lints one key/value statement.
func (lt *linter) scanStatement() {
	lt.checkKey()

	endKey := lt.cur.Pos()
	lt.skipWS()

	if c, ok := lt.cur.Peek(); !ok || c != '=' {
		lt.syntax(diag.LintExpectedEquals, source.Point(endKey),
			"Expected '=' after key.")
	}
	lt.cur.Next() // skip over the equals sign

	lt.skipWS()

	if c, ok := lt.cur.Peek(); ok && c == '`' {
		lt.scanRawValue()
		return
	}
	for {
		c, ok := lt.cur.Peek()
		if !ok || !dialect.IsValueChar(c, lt.d) {
			break
		}
		lt.cur.Next()
	}
}

// scanRawValue walks a raw value while trying to detect where a missing
// closing backtick could be. lastKey tracks the most recent run of key-like
// characters; detectedStmt keeps the first such run that was immediately
// followed by an equals sign. If the value turns out to be unterminated,
// that is probably where the next real statement began.
func (lt *linter) scanRawValue() {
	start := lt.cur.Pos()
	lt.cur.Next() // skip over the opening backtick

	var lastKey, detectedStmt *source.LineCol

	for {
		c, ok := lt.cur.Peek()
		if !ok {
			break
		}

		switch {
		case c == '=':
			// do not overwrite a previously detected statement
			if detectedStmt == nil && lastKey != nil {
				detectedStmt = lastKey
			}
			lastKey = nil

		case c == '`':
			lt.cur.Next()
			lastKey = nil
			if n, nok := lt.cur.Peek(); !nok || n != '`' {
				// not an escaped backtick
				if nok && dialect.IsValueChar(n, lt.d) && !unicode.IsSpace(n) {
					lt.syntax(diag.LintUnescapedBacktick, source.Point(lt.cur.Pos()),
						"Unescaped backtick inside raw value. Use '``' to represent a backtick in a raw value.")
				} else {
					// this backtick terminates the raw value
					return
				}
			}
			// escaped: the second backtick is consumed below

		case dialect.IsKeyChar(c, lt.d):
			if lastKey == nil {
				p := lt.cur.Pos()
				lastKey = &p
			}

		case unicode.IsSpace(c):
			// this could be the whitespace between a key and its equals sign
			lt.skipWS()
			if n, nok := lt.cur.Peek(); !nok || n != '=' {
				// it was not
				lastKey = nil
			}
			// do not advance the cursor at the end of this iteration
			continue

		default:
			// this can not be the last key
			lastKey = nil
		}
		lt.cur.Next()
	}

	lt.syntax(diag.LintUnterminatedRaw, source.Between(start, lt.cur.Pos()),
		"Expected '`' at end of raw value.")
	if detectedStmt != nil {
		lt.info(diag.LintMissingBacktickHint, source.Point(*detectedStmt),
			"This looks like a new statement, did you forget to put a backtick here?")
	}
}

func (lt *linter) info(code diag.Code, span source.Span, msg string) {
	lt.r.Report(code, diag.SevInfo, span, msg)
}

func (lt *linter) syntax(code diag.Code, span source.Span, msg string) {
	lt.r.Report(code, diag.SevError, span, msg)
}
