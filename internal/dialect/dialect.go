// Package dialect holds the CNI dialect configuration and the character
// classifiers the parser and linter share. A Dialect value is created once
// per pass and never mutated; there are no global feature switches.
package dialect

// Dialect selects the opt-in extensions of the CNI format.
type Dialect struct {
	// INI allows semicolons to start comments.
	INI bool
	// MoreKeys widens the permitted key character set from [0-9a-zA-Z_.-]
	// to any rune that is not a bracket, equals sign, backtick, whitespace
	// or comment start.
	MoreKeys bool
}
