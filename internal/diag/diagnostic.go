package diag

import "cniutil/internal/source"

// Diagnostic is one linter finding.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Span     source.Span
	Message  string
}
