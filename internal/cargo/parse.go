package cargo

import (
	"bytes"
	"encoding/json"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"clippyci/internal/diag"
)

// ErrNotJSON is returned for lines that are not a single JSON object.
var ErrNotJSON = errors.New("line is not a JSON object")

// ParseLine decodes one raw stdout line. It never panics; anything that is
// not exactly one JSON object yields an error wrapping ErrNotJSON.
func ParseLine(line []byte) (Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return Message{}, ErrNotJSON
	}
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return Message{}, errors.Mark(errors.Wrap(err, "decode cargo message"), ErrNotJSON)
	}
	return msg, nil
}

// ToDiagnostic converts an accepted compiler message into the shared model.
// Spans whose line or column cannot be represented are dropped and counted in
// Unusable.
func ToDiagnostic(msg Message, dir string) diag.Diagnostic {
	cm := msg.Message
	d := diag.Diagnostic{
		Severity: diag.ParseSeverity(cm.Level),
		Message:  cm.Message,
		Rendered: cm.Rendered,
		Package:  msg.PackageID,
		Dir:      dir,
	}
	if cm.Code != nil {
		d.Code = cm.Code.Code
	}
	if d.Rendered == "" {
		d.Rendered = cm.Message
	}
	if len(cm.Spans) > 0 {
		d.Spans = make([]diag.Span, 0, len(cm.Spans))
		for _, sp := range cm.Spans {
			converted, err := convertSpan(sp)
			if err != nil {
				d.Unusable++
				continue
			}
			d.Spans = append(d.Spans, converted)
		}
	}
	return d
}

func convertSpan(sp Span) (diag.Span, error) {
	lineStart, err := safecast.Conv[uint32](sp.LineStart)
	if err != nil {
		return diag.Span{}, errors.Wrapf(err, "%s: line_start", sp.FileName)
	}
	colStart, err := safecast.Conv[uint32](sp.ColumnStart)
	if err != nil {
		return diag.Span{}, errors.Wrapf(err, "%s: column_start", sp.FileName)
	}
	lineEnd, err := safecast.Conv[uint32](sp.LineEnd)
	if err != nil {
		lineEnd = lineStart
	}
	colEnd, err := safecast.Conv[uint32](sp.ColumnEnd)
	if err != nil {
		colEnd = colStart
	}
	return diag.Span{
		File:        sp.FileName,
		LineStart:   lineStart,
		ColumnStart: colStart,
		LineEnd:     lineEnd,
		ColumnEnd:   colEnd,
		Primary:     sp.IsPrimary,
		Label:       sp.Label,
	}, nil
}
