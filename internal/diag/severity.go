package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is reserved for future rules; the linter currently emits
	// only info and syntax error.
	SevWarning
	SevError
)

// String returns the severity label used in linter output lines.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "syntax error"
	}
	return "unknown"
}
