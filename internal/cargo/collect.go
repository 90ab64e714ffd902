package cargo

import (
	"go.uber.org/zap"

	"clippyci/internal/diag"
)

// maxLoggedLine bounds how much of a skipped line ends up in the log.
const maxLoggedLine = 512

// Stats counts how the lines of one run were classified.
type Stats struct {
	Accepted int
	Ignored  int // well-formed objects with another reason
	Skipped  int // not JSON objects
}

// Collect classifies every captured stdout line of one run. Compiler messages
// are converted and reported in input order, tagged with dir. Other objects
// are ignored silently; malformed lines are logged and skipped.
func Collect(lines []string, dir string, rep diag.Reporter, log *zap.SugaredLogger) Stats {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var st Stats
	for _, line := range lines {
		msg, err := ParseLine([]byte(line))
		if err != nil {
			st.Skipped++
			log.Warnw("skipping line in output", "dir", dir, "line", clip(line))
			continue
		}
		if !msg.IsCompilerMessage() {
			st.Ignored++
			continue
		}
		st.Accepted++
		rep.Report(ToDiagnostic(msg, dir))
	}
	return st
}

func clip(s string) string {
	if len(s) <= maxLoggedLine {
		return s
	}
	return s[:maxLoggedLine] + "..."
}
