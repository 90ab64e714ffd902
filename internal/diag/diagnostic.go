package diag

// Span is a tool-reported source range. Lines and columns are 1-based.
type Span struct {
	File        string
	LineStart   uint32
	ColumnStart uint32
	LineEnd     uint32
	ColumnEnd   uint32
	Primary     bool
	Label       string
}

// Diagnostic is one accepted compiler message, tagged with the project
// directory it was produced in. Treat it as immutable once built.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Rendered string
	Spans    []Span
	// Unusable counts reported spans whose location could not be kept.
	Unusable int
	Package  string
	Dir      string
}

// PrimarySpan returns the first span flagged primary, in input order.
func (d Diagnostic) PrimarySpan() (Span, bool) {
	for _, sp := range d.Spans {
		if sp.Primary {
			return sp, true
		}
	}
	return Span{}, false
}

// HasSpans reports whether the tool attached any location at all, usable
// or not.
func (d Diagnostic) HasSpans() bool {
	return len(d.Spans) > 0 || d.Unusable > 0
}
