package diag

import "fmt"

// Code is a compact, stable identifier for a lint rule.
type Code uint16

const (
	UnknownCode Code = 0

	// style findings
	LintUnnecessaryWhitespace Code = 1001
	LintHeadingCommentOnly    Code = 1002
	LintHeadingEmpty          Code = 1003
	LintHeadingCommentBefore  Code = 1004
	LintHeadingCommentAfter   Code = 1005
	LintHeadingLineBreak      Code = 1006
	LintMissingBacktickHint   Code = 1007

	// syntax findings
	LintUnexpectedBracket   Code = 2001
	LintExpectedSectionEnd  Code = 2002
	LintKeyLeadingDot       Code = 2003
	LintKeyTrailingDot      Code = 2004
	LintRawKey              Code = 2005
	LintExpectedEquals      Code = 2006
	LintExpectedKey         Code = 2007
	LintUnescapedBacktick   Code = 2008
	LintUnterminatedRaw     Code = 2009
	LintExpectedStatement   Code = 2010

	// tool errors
	IOLoadFile Code = 3001
)

func (c Code) String() string {
	switch c {
	case LintUnnecessaryWhitespace:
		return "unnecessary-whitespace"
	case LintHeadingCommentOnly:
		return "heading-comment-only"
	case LintHeadingEmpty:
		return "heading-empty"
	case LintHeadingCommentBefore:
		return "heading-comment-before"
	case LintHeadingCommentAfter:
		return "heading-comment-after"
	case LintHeadingLineBreak:
		return "heading-line-break"
	case LintMissingBacktickHint:
		return "missing-backtick-hint"
	case LintUnexpectedBracket:
		return "unexpected-bracket"
	case LintExpectedSectionEnd:
		return "expected-section-end"
	case LintKeyLeadingDot:
		return "key-leading-dot"
	case LintKeyTrailingDot:
		return "key-trailing-dot"
	case LintRawKey:
		return "raw-key"
	case LintExpectedEquals:
		return "expected-equals"
	case LintExpectedKey:
		return "expected-key"
	case LintUnescapedBacktick:
		return "unescaped-backtick"
	case LintUnterminatedRaw:
		return "unterminated-raw"
	case LintExpectedStatement:
		return "expected-statement"
	case IOLoadFile:
		return "io-load-file"
	}
	return fmt.Sprintf("code-%d", uint16(c))
}
