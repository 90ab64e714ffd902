// Package driver orchestrates a clippyci run: it resolves the project
// directories, runs the tool in each of them on a bounded worker pool and
// gathers the formatted annotations into one run-scoped Output.
//
// A run moves through these states:
//
//	Idle -> Locating -> SingleRun -> Draining -> Done
//	Idle -> Locating -> FanOut    -> Draining -> Done
//
// Draining is entered once dispatch has begun and lasts until every run has
// finished or the first fatal error is known. SingleRun is taken when no glob
// is configured and checks the base directory with raw span paths. FanOut
// checks every located project with paths made relative to the base
// directory.
//
// A fatal tool outcome (unexpected exit code, failure to start) ends the run
// at once with that error. Projects that have not started are skipped.
// Projects already running are neither cancelled nor waited for; their
// results and progress events are dropped. Output is discarded in that case.
//
// Output lines from different projects interleave in completion order. Lines
// of a single project stay contiguous and in tool order.
package driver
