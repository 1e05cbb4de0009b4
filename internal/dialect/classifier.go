package dialect

import "unicode"

// IsVerticalWS implements Perl's / Raku's "\v", i.e. vertical whitespace.
func IsVerticalWS(r rune) bool {
	switch r {
	case '\n', '\v', '\f', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// IsCommentStart reports whether r starts a comment under dialect d.
func IsCommentStart(r rune, d Dialect) bool {
	return r == '#' || (d.INI && r == ';')
}

// IsKeyChar reports whether r may appear in a key or section name under
// dialect d.
func IsKeyChar(r rune, d Dialect) bool {
	if d.MoreKeys {
		switch r {
		case '[', ']', '=', '`':
			return false
		}
		return !IsCommentStart(r, d) && !unicode.IsSpace(r)
	}
	return r >= '0' && r <= '9' ||
		r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r == '-' || r == '_' || r == '.'
}

// IsValueChar reports whether r may appear in a bareword value under
// dialect d: anything but a comment start or vertical whitespace.
func IsValueChar(r rune, d Dialect) bool {
	return !IsCommentStart(r, d) && !IsVerticalWS(r)
}
