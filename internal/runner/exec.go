package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// maxLineSize bounds a single stdout line. Rendered diagnostics with long
// code excerpts easily exceed bufio's default.
const maxLineSize = 64 << 20

// Capture is the raw result of one process.
type Capture struct {
	Lines    []string
	ExitCode int
}

// Executor runs a command to completion. Implementations must not apply a
// timeout of their own.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (Capture, error)
}

// ExecExecutor runs commands as child processes.
type ExecExecutor struct {
	Shell  string    // defaults to "sh"
	Stderr io.Writer // defaults to os.Stderr
}

// Execute starts the process in cmd.Dir, captures stdout line by line and
// waits for it to exit. A non-zero exit is not an error here.
func (e ExecExecutor) Execute(ctx context.Context, cmd Command) (Capture, error) {
	var proc *exec.Cmd
	if cmd.NeedsShell() {
		shell := e.Shell
		if shell == "" {
			shell = "sh"
		}
		proc = exec.CommandContext(ctx, shell, "-c", cmd.Script())
	} else {
		argv := cmd.Argv()
		if len(argv) == 0 {
			return Capture{}, errors.New("empty command")
		}
		proc = exec.CommandContext(ctx, argv[0], argv[1:]...)
		proc.Env = append(os.Environ(), cmd.Env...)
	}
	proc.Dir = cmd.Dir
	proc.Stderr = e.Stderr
	if proc.Stderr == nil {
		proc.Stderr = os.Stderr
	}

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return Capture{}, errors.Wrap(err, "stdout pipe")
	}
	if err := proc.Start(); err != nil {
		return Capture{}, errors.Wrapf(err, "start %s", proc.Path)
	}

	lines, scanErr := readLines(stdout)
	waitErr := proc.Wait()
	if scanErr != nil {
		return Capture{}, errors.Wrap(scanErr, "read stdout")
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Capture{}, errors.Wrap(waitErr, "wait")
		}
		return Capture{Lines: lines, ExitCode: exitErr.ExitCode()}, nil
	}
	return Capture{Lines: lines, ExitCode: 0}, nil
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		// drain so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, r)
		return lines, err
	}
	return lines, nil
}
