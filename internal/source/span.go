package source

import "fmt"

// Span is a line/column range in a single file. Start is the first position
// of the region, End the first position after it. Positions are resolved by
// the scanner while it walks the input, so every vertical-whitespace unit
// (including NEL, LS and PS) counts as a line break.
type Span struct {
	Start LineCol
	End   LineCol
}

// Point returns a one-column span anchored at pos.
func Point(pos LineCol) Span {
	return Span{Start: pos, End: LineCol{Line: pos.Line, Col: pos.Col + 1}}
}

// Between returns the span from start to end.
func Between(start, end LineCol) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Col, s.End.Line, s.End.Col)
}

// Cover extends s to also include other.
func (s Span) Cover(other Span) Span {
	if other.Start.Before(s.Start) {
		s.Start = other.Start
	}
	if s.End.Before(other.End) {
		s.End = other.End
	}
	return s
}
