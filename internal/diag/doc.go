// Package diag defines the diagnostic model shared by the parser, the
// formatters and the driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: warning or error; anything else is SevUnknown and is never
//     rendered as an annotation.
//   - Rendered: the tool's fully rendered message, possibly multi-line.
//   - Spans: every location the tool reported, in input order. At most one
//     is expected to be primary; the first primary span wins. Spans that
//     could not be converted are only counted, in Unusable, so a diagnostic
//     that had a location never turns into a package-level one.
//   - Package: the cargo package id, used for package-level errors that
//     carry no location.
//   - Dir: the project directory the run happened in.
//
// # Emitting diagnostics
//
// Producers emit through a Reporter. BagReporter appends into a per-run Bag;
// DedupReporter suppresses repeats before forwarding.
//
// Package diag does not perform formatting or IO. Rendering lives in
// internal/diagfmt, collection from the cargo stream in internal/cargo.
package diag
