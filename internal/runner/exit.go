package runner

import "fmt"

// ToleratedExitCode is what cargo returns when the crate fails to compile.
// The diagnostics are still on stdout, so the run counts as usable.
const ToleratedExitCode = 101

// Outcome classifies a finished tool process.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota
	OutcomeTolerated
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTolerated:
		return "tolerated"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify applies the exit-code policy.
func Classify(code int) Outcome {
	switch code {
	case 0:
		return OutcomeSuccess
	case ToleratedExitCode:
		return OutcomeTolerated
	default:
		return OutcomeFatal
	}
}

// ExitError reports a tool exit code outside the policy.
type ExitError struct {
	Dir  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("clippy exited with code %d in %s", e.Code, e.Dir)
}

// StartError reports that the tool could not be started or its output could
// not be captured. No output is available in that case.
type StartError struct {
	Dir string
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to run clippy in %s: %v", e.Dir, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }
