// Package diag defines the diagnostic model shared by the linter and the
// rendering layers.
//
// Diagnostic is the central record: a Severity, a stable Code, a line/column
// Span and a human oriented Message. Producers emit diagnostics through the
// Reporter interface so they stay decoupled from storage and formatting;
// Bag is the default collector. Rendering lives in internal/diagfmt.
//
// Diagnostics are advisory. Nothing in this package ever aborts a scan: a
// producer that reports an error severity is still expected to resynchronize
// and keep going.
package diag
