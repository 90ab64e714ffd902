// Package cargo decodes the line-delimited JSON stream that
// `cargo clippy --message-format=json` writes to stdout.
//
// Each stdout line is one JSON object with a "reason" discriminator. Only
// "compiler-message" objects carry diagnostics; build-script output, artifact
// notices and the final build-finished event are ignored. Lines that are not
// JSON objects at all are skipped and logged, never treated as failures.
//
//	bag := diag.NewBag(0)
//	stats := cargo.Collect(lines, dir, diag.BagReporter{Bag: bag}, log)
package cargo
