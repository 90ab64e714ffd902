// Package trace records spans of a clippyci run so slow or stuck projects can
// be identified from the CI log.
//
// Enable it with:
//
//	clippyci --glob 'crates/*' --trace=- --trace-level=detail
//
// Scopes, coarse to fine:
//
//   - ScopeDriver: the whole run and its states
//   - ScopeProject: one project directory
//   - ScopeCommand: the tool process inside a project
//
// LevelPhase emits driver spans, LevelDetail adds projects, LevelDebug adds
// commands. A heartbeat keeps ticking while spans stay open, which makes a
// hung tool process visible without imposing a timeout.
//
// The tracer travels through the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeProject, dir, parent)
//	defer span.End("")
package trace
