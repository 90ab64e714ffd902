package diag

type dedupKey struct {
	sev  Severity
	code string
	file string
	line uint32
	col  uint32
	msg  string
	pkg  string
}

// DedupReporter wraps another Reporter and suppresses repeats of the same
// severity, code, primary location and rendered message. Cargo reports a
// warning once per target that compiles the file (lib, bin, tests).
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{
		sev:  d.Severity,
		code: d.Code,
		msg:  d.Rendered,
	}
	if sp, ok := d.PrimarySpan(); ok {
		key.file = sp.File
		key.line = sp.LineStart
		key.col = sp.ColumnStart
	} else {
		key.pkg = d.Package
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
