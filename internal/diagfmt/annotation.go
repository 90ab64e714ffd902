package diagfmt

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"clippyci/internal/diag"
)

var escaper = strings.NewReplacer("\n", "%0A", "\r", "%0D")

// Escape keeps an annotation on one physical line: LF becomes %0A and CR
// becomes %0D.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Annotation renders one diagnostic as a workflow command. The second result
// is false when the diagnostic has no usable location and is not a
// package-level error, or when its severity has no annotation shape.
//
// Two shapes are produced:
//
//	::error::<message> from <package-id>
//	::<severity> file=<path>,line=<line>,col=<col>::<message>
//
// The message is not escaped here; Escape is applied when lines are written.
func Annotation(d diag.Diagnostic, opts AnnotationOpts) (string, bool) {
	if !d.HasSpans() {
		if d.Severity != diag.SevError {
			return "", false
		}
		return fmt.Sprintf("::error::%s from %s", d.Rendered, d.Package), true
	}

	sp, ok := d.PrimarySpan()
	if !ok {
		return "", false
	}

	switch d.Severity {
	case diag.SevWarning, diag.SevError:
	default:
		return "", false
	}

	file := ResolvePath(d.Dir, sp.File, opts.PathMode, opts.BaseDir)
	return fmt.Sprintf("::%s file=%s,line=%d,col=%d::%s",
		d.Severity, file, sp.LineStart, sp.ColumnStart, d.Rendered), true
}

// Annotations maps a whole bag, keeping bag order and dropping unusable
// diagnostics.
func Annotations(bag *diag.Bag, opts AnnotationOpts) []string {
	items := bag.Items()
	out := make([]string, 0, len(items))
	for _, d := range items {
		if line, ok := Annotation(d, opts); ok {
			out = append(out, line)
		}
	}
	return out
}

// ResolvePath turns a span file name into the path shown to the CI platform.
// In project mode the project directory, relative to base, is joined with
// the file name using forward slashes.
func ResolvePath(dir, file string, mode PathMode, base string) string {
	if mode != PathModeProject {
		return file
	}
	rel := relativeDir(base, dir)
	if rel == "" || rel == "." {
		return file
	}
	return path.Join(rel, file)
}

func relativeDir(base, dir string) string {
	if base == "" {
		return filepath.ToSlash(dir)
	}
	rel, err := filepath.Rel(base, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = strings.TrimPrefix(strings.TrimPrefix(dir, base), string(filepath.Separator))
	}
	return filepath.ToSlash(rel)
}
