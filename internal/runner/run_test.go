package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	capture Capture
	err     error
	got     []Command
}

func (f *fakeExecutor) Execute(_ context.Context, cmd Command) (Capture, error) {
	f.got = append(f.got, cmd)
	return f.capture, f.err
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Classify(0))
	assert.Equal(t, OutcomeTolerated, Classify(101))
	for _, code := range []int{1, 2, 100, 102, -1, 255} {
		assert.Equal(t, OutcomeFatal, Classify(code), "code %d", code)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "tolerated", OutcomeTolerated.String())
	assert.Equal(t, "fatal", OutcomeFatal.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}

func TestRunSuccess(t *testing.T) {
	ex := &fakeExecutor{capture: Capture{Lines: []string{"{}"}, ExitCode: 0}}
	res, err := Run(context.Background(), ex, "/ws", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, []string{"{}"}, res.Lines)
	require.Len(t, ex.got, 1)
	assert.Equal(t, "/ws", ex.got[0].Dir)
}

func TestRunToleratesCompileFailure(t *testing.T) {
	ex := &fakeExecutor{capture: Capture{Lines: []string{"a", "b"}, ExitCode: ToleratedExitCode}}
	res, err := Run(context.Background(), ex, "/ws", Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTolerated, res.Outcome)
	assert.Len(t, res.Lines, 2)
	assert.False(t, IsFatal(err))
}

func TestRunFatalExitCode(t *testing.T) {
	ex := &fakeExecutor{capture: Capture{ExitCode: 1}}
	res, err := Run(context.Background(), ex, "/ws", Options{})
	require.Error(t, err)
	assert.True(t, IsFatal(err))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Equal(t, "clippy exited with code 1 in /ws", exitErr.Error())
	assert.Equal(t, OutcomeFatal, res.Outcome)
}

func TestRunStartFailure(t *testing.T) {
	boom := errors.New("exec: \"cargo\": executable file not found in $PATH")
	ex := &fakeExecutor{err: boom}
	res, err := Run(context.Background(), ex, "/ws", Options{})

	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, "/ws", startErr.Dir)
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsFatal(err))
	assert.Nil(t, res.Lines)
}

func TestRunKeepsStartError(t *testing.T) {
	orig := &StartError{Dir: "/other", Err: errors.New("pipe")}
	ex := &fakeExecutor{err: orig}
	_, err := Run(context.Background(), ex, "/ws", Options{})
	assert.Same(t, orig, err)
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("other")))
	assert.True(t, IsFatal(&ExitError{Code: 2}))
}
