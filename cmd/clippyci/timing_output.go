package main

import (
	"fmt"
	"io"

	"clippyci/internal/observ"
)

func printTimings(out io.Writer, reports []observ.Report) {
	if out == nil || len(reports) == 0 {
		return
	}
	var total float64
	for _, r := range reports {
		_, _ = io.WriteString(out, r.Summary())
		total += r.TotalMS
	}
	if len(reports) > 1 {
		fmt.Fprintf(out, "all projects: %.1f ms (sum of %d runs)\n", total, len(reports))
	}
}
