package diagfmt

import (
	"encoding/json"
	"io"

	"clippyci/internal/diag"
)

// LocationJSON is the primary span of a diagnostic.
type LocationJSON struct {
	File      string `json:"file"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// DiagnosticJSON is one diagnostic in the JSON document.
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code,omitempty"`
	Message  string        `json:"message"`
	Rendered string        `json:"rendered"`
	Package  string        `json:"package,omitempty"`
	Project  string        `json:"project"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticsOutput is the root of the JSON document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput builds the document without encoding it.
// Diagnostics that Annotation would drop are dropped here too, so both
// formats always describe the same findings. A positive Max keeps only the
// first Max of them.
func BuildDiagnosticsOutput(items []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	annOpts := AnnotationOpts{PathMode: opts.PathMode, BaseDir: opts.BaseDir}
	diagnostics := make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		if opts.Max > 0 && len(diagnostics) >= opts.Max {
			break
		}
		if _, ok := Annotation(d, annOpts); !ok {
			continue
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
			Rendered: d.Rendered,
			Package:  d.Package,
			Project:  relativeDir(opts.BaseDir, d.Dir),
		}
		if sp, ok := d.PrimarySpan(); ok {
			dj.Location = &LocationJSON{
				File:      ResolvePath(d.Dir, sp.File, opts.PathMode, opts.BaseDir),
				StartLine: sp.LineStart,
				StartCol:  sp.ColumnStart,
				EndLine:   sp.LineEnd,
				EndCol:    sp.ColumnEnd,
			}
		}
		diagnostics = append(diagnostics, dj)
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes items as an indented JSON document.
func JSON(w io.Writer, items []diag.Diagnostic, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(items, opts)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
