package runner

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Result is a usable run: exit code 0 or the tolerated code.
type Result struct {
	Command  Command
	Lines    []string
	ExitCode int
	Outcome  Outcome
}

// Run builds, executes and classifies the tool run for dir. It returns a
// *StartError when there is no output at all and an *ExitError when the exit
// code is fatal. Both must stop the whole run.
func Run(ctx context.Context, ex Executor, dir string, opts Options) (Result, error) {
	cmd := Build(dir, opts)
	capture, err := ex.Execute(ctx, cmd)
	if err != nil {
		var startErr *StartError
		if errors.As(err, &startErr) {
			return Result{Command: cmd}, err
		}
		return Result{Command: cmd}, &StartError{Dir: dir, Err: err}
	}
	res := Result{
		Command:  cmd,
		Lines:    capture.Lines,
		ExitCode: capture.ExitCode,
		Outcome:  Classify(capture.ExitCode),
	}
	if res.Outcome == OutcomeFatal {
		return res, &ExitError{Dir: dir, Code: capture.ExitCode}
	}
	return res, nil
}

// IsFatal reports whether err must terminate the whole run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *ExitError
	var startErr *StartError
	return errors.As(err, &exitErr) || errors.As(err, &startErr)
}
