package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	// Color enables ANSI-colored severities.
	Color bool
	// Context prints the offending source line with an underline.
	Context bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	// Max truncates the output, not the Bag. 0 means no limit.
	Max int
}
