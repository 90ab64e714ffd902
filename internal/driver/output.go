package driver

import (
	"bufio"
	"io"
	"sync"

	"github.com/cockroachdb/errors"

	"clippyci/internal/diag"
	"clippyci/internal/diagfmt"
	"clippyci/internal/observ"
)

// Output collects the results of every project run. It is append-only and
// safe for concurrent use.
type Output struct {
	mu      sync.Mutex
	lines   []string
	bag     *diag.Bag
	timings []observ.Report
}

func NewOutput() *Output {
	return &Output{bag: diag.NewBag(0)}
}

// Append adds the lines of one run. They stay contiguous.
func (o *Output) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	o.mu.Lock()
	o.lines = append(o.lines, lines...)
	o.mu.Unlock()
}

// Lines returns a copy of the collected annotation lines.
func (o *Output) Lines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.lines...)
}

// Len returns the number of collected lines.
func (o *Output) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.lines)
}

// AddDiagnostics keeps the structured findings of one run behind its lines.
func (o *Output) AddDiagnostics(bag *diag.Bag) {
	if bag.Len() == 0 {
		return
	}
	o.mu.Lock()
	o.bag.Merge(bag)
	o.mu.Unlock()
}

// Diagnostics returns a copy of the structured findings.
func (o *Output) Diagnostics() []diag.Diagnostic {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]diag.Diagnostic(nil), o.bag.Items()...)
}

func (o *Output) addTiming(r observ.Report) {
	o.mu.Lock()
	o.timings = append(o.timings, r)
	o.mu.Unlock()
}

// Timings returns per-project phase reports in completion order.
func (o *Output) Timings() []observ.Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]observ.Report(nil), o.timings...)
}

// Drain writes every line to w, escaped and newline terminated.
func Drain(w io.Writer, out *Output) error {
	if out == nil {
		return nil
	}
	bw := bufio.NewWriter(w)
	for _, line := range out.Lines() {
		if _, err := bw.WriteString(diagfmt.Escape(line)); err != nil {
			return errors.Wrap(err, "write annotations")
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "write annotations")
		}
	}
	return errors.Wrap(bw.Flush(), "write annotations")
}
