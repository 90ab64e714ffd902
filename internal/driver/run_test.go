package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clippyci/internal/pipeline"
	"clippyci/internal/project"
	"clippyci/internal/runner"
	"clippyci/internal/trace"
)

func compilerMessage(t *testing.T, level, rendered, file string, line, col int) string {
	t.Helper()
	msg := map[string]any{
		"reason":     "compiler-message",
		"package_id": "demo 0.1.0",
		"message": map[string]any{
			"level":    level,
			"message":  rendered,
			"rendered": rendered,
			"spans": []map[string]any{{
				"file_name":    file,
				"line_start":   line,
				"column_start": col,
				"is_primary":   true,
			}},
		},
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return string(data)
}

type response struct {
	lines []string
	code  int
	err   error
	wait  <-chan struct{}
}

// fakeExecutor answers per directory and records what ran.
type fakeExecutor struct {
	mu        sync.Mutex
	responses map[string]response
	ran       []string
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	delay     time.Duration
	onStart   func(dir string)
	ctxErrs   map[string]error
}

func (f *fakeExecutor) Execute(ctx context.Context, cmd runner.Command) (runner.Capture, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxSeen.Load()
		if n <= cur || f.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.ran = append(f.ran, cmd.Dir)
	resp := f.responses[cmd.Dir]
	onStart := f.onStart
	f.mu.Unlock()

	if onStart != nil {
		onStart(cmd.Dir)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if resp.wait != nil {
		<-resp.wait
	}

	f.mu.Lock()
	if f.ctxErrs == nil {
		f.ctxErrs = make(map[string]error)
	}
	f.ctxErrs[cmd.Dir] = ctx.Err()
	f.mu.Unlock()

	if resp.err != nil {
		return runner.Capture{}, resp.err
	}
	return runner.Capture{Lines: resp.lines, ExitCode: resp.code}, nil
}

func (f *fakeExecutor) ranDirs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ran...)
}

type staticLocator struct {
	projects []project.Project
	err      error
	gotBase  string
	gotGlob  string
}

func (s *staticLocator) Locate(base, pattern string) ([]project.Project, error) {
	s.gotBase, s.gotGlob = base, pattern
	return s.projects, s.err
}

func (s *staticLocator) Root(dir string) project.Project {
	return project.Project{Dir: dir, Rel: ".", Name: "demo"}
}

func projectsUnder(base string, rels ...string) []project.Project {
	out := make([]project.Project, 0, len(rels))
	for _, rel := range rels {
		out = append(out, project.Project{Dir: filepath.Join(base, filepath.FromSlash(rel)), Rel: rel})
	}
	return out
}

func TestSingleRunUsesRawPaths(t *testing.T) {
	base := t.TempDir()
	ex := &fakeExecutor{responses: map[string]response{
		base: {lines: []string{
			"   Compiling demo v0.1.0",
			compilerMessage(t, "warning", "unused variable", "src/main.rs", 10, 5),
			`{"reason":"build-finished","success":true}`,
		}},
	}}
	var states []State
	out, err := Run(context.Background(), Config{Base: base}, Deps{
		Executor: ex,
		OnState:  func(s State) { states = append(states, s) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"::warning file=src/main.rs,line=10,col=5::unused variable"}, out.Lines())
	assert.Equal(t, []State{StateIdle, StateLocating, StateSingleRun, StateDraining, StateDone}, states)
	assert.Equal(t, []string{base}, ex.ranDirs())
	assert.Len(t, out.Diagnostics(), 1)
	require.Len(t, out.Timings(), 1)
	assert.Equal(t, ".", out.Timings()[0].Label)
}

func TestFanOutPrefixesProjectPaths(t *testing.T) {
	base := t.TempDir()
	loc := &staticLocator{projects: projectsUnder(base, "crates/a", "crates/b")}
	ex := &fakeExecutor{responses: map[string]response{
		filepath.Join(base, "crates", "a"): {lines: []string{compilerMessage(t, "warning", "w", "src/lib.rs", 1, 2)}},
		filepath.Join(base, "crates", "b"): {
			lines: []string{compilerMessage(t, "error", "e", "src/main.rs", 3, 4)},
			code:  runner.ToleratedExitCode,
		},
	}}
	var states []State
	out, err := Run(context.Background(), Config{Base: base, Glob: "crates/*", Jobs: 1}, Deps{
		Executor: ex,
		Locator:  loc,
		OnState:  func(s State) { states = append(states, s) },
	})
	require.NoError(t, err)
	assert.Equal(t, "crates/*", loc.gotGlob)
	assert.Equal(t, base, loc.gotBase)
	assert.Equal(t, []string{
		"::warning file=crates/a/src/lib.rs,line=1,col=2::w",
		"::error file=crates/b/src/main.rs,line=3,col=4::e",
	}, out.Lines())
	assert.Equal(t, []State{StateIdle, StateLocating, StateFanOut, StateDraining, StateDone}, states)
}

func TestFanOutNoMatches(t *testing.T) {
	ex := &fakeExecutor{}
	out, err := Run(context.Background(), Config{Base: t.TempDir(), Glob: "nothing/*"}, Deps{
		Executor: ex,
		Locator:  &staticLocator{},
	})
	require.NoError(t, err)
	assert.Zero(t, out.Len())
	assert.Empty(t, ex.ranDirs())
}

func TestLocateError(t *testing.T) {
	_, err := Run(context.Background(), Config{Base: t.TempDir(), Glob: "x"}, Deps{
		Executor: &fakeExecutor{},
		Locator:  &staticLocator{err: errors.New("walk failed")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk failed")
}

func TestMissingExecutor(t *testing.T) {
	_, err := Run(context.Background(), Config{Base: "."}, Deps{})
	require.Error(t, err)
}

func TestFatalExitStopsDispatch(t *testing.T) {
	base := t.TempDir()
	projects := projectsUnder(base, "a", "b", "c")
	ex := &fakeExecutor{responses: map[string]response{
		projects[0].Dir: {code: 2},
	}}
	rec := &pipeline.Recorder{}
	out, err := Run(context.Background(), Config{Base: base, Glob: "*", Jobs: 1}, Deps{
		Executor: ex,
		Locator:  &staticLocator{projects: projects},
		Progress: rec,
	})
	require.Error(t, err)
	assert.Nil(t, out)

	var exitErr *runner.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
	assert.Equal(t, []string{projects[0].Dir}, ex.ranDirs())

	// b never starts; its skip event may come after the run returned
	last, ok := rec.Last("b")
	require.True(t, ok)
	assert.Contains(t, []pipeline.Status{pipeline.StatusQueued, pipeline.StatusSkipped}, last.Status)
	last, ok = rec.Last("a")
	require.True(t, ok)
	assert.Equal(t, pipeline.StatusError, last.Status)
	assert.Equal(t, 2, last.ExitCode)
}

func TestStartFailureIsFatal(t *testing.T) {
	base := t.TempDir()
	ex := &fakeExecutor{responses: map[string]response{
		base: {err: errors.New("exec: \"cargo\": executable file not found in $PATH")},
	}}
	out, err := Run(context.Background(), Config{Base: base}, Deps{Executor: ex})
	require.Error(t, err)
	assert.Nil(t, out)
	var startErr *runner.StartError
	assert.True(t, errors.As(err, &startErr))
}

func TestFatalErrorDoesNotWaitForInFlightRuns(t *testing.T) {
	base := t.TempDir()
	projects := projectsUnder(base, "slow", "bad")
	release := make(chan struct{})
	slowStarted := make(chan struct{})

	ex := &fakeExecutor{responses: map[string]response{
		projects[0].Dir: {lines: []string{compilerMessage(t, "warning", "w", "src/lib.rs", 1, 1)}, wait: release},
		projects[1].Dir: {code: 3},
	}}
	ex.onStart = func(dir string) {
		if dir == projects[0].Dir {
			close(slowStarted)
			return
		}
		<-slowStarted
	}
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	rec := &pipeline.Recorder{}
	done := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), Config{Base: base, Glob: "*", Jobs: 2}, Deps{
			Executor: ex,
			Locator:  &staticLocator{projects: projects},
			Progress: rec,
		})
		done <- err
	}()

	select {
	case err := <-done:
		var exitErr *runner.ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 3, exitErr.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("run kept waiting for the slow project after a fatal exit")
	}
	assert.Equal(t, int32(1), ex.inFlight.Load(), "slow project is still running")
	seen := len(rec.Events())

	close(release)
	require.Eventually(t, func() bool { return ex.inFlight.Load() == 0 }, 5*time.Second, 5*time.Millisecond)

	ex.mu.Lock()
	assert.NoError(t, ex.ctxErrs[projects[0].Dir], "in-flight run must not be cancelled")
	ex.mu.Unlock()
	// give the leftover run time to report, then make sure nothing got through
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.Events(), seen)
}

func TestToleratedThenFatalExitFailsRun(t *testing.T) {
	base := t.TempDir()
	projects := projectsUnder(base, "a", "b")
	ex := &fakeExecutor{responses: map[string]response{
		projects[0].Dir: {
			lines: []string{compilerMessage(t, "error", "mismatched types", "src/lib.rs", 2, 3)},
			code:  runner.ToleratedExitCode,
		},
		projects[1].Dir: {code: 2},
	}}
	out, err := Run(context.Background(), Config{Base: base, Glob: "*", Jobs: 1}, Deps{
		Executor: ex,
		Locator:  &staticLocator{projects: projects},
	})
	require.Error(t, err)
	assert.Nil(t, out, "annotations of the tolerated run are not printed")

	var exitErr *runner.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
	assert.Equal(t, projects[1].Dir, exitErr.Dir)
	assert.Equal(t, []string{projects[0].Dir, projects[1].Dir}, ex.ranDirs())
}

func TestToleratedExitWithoutErrorsWarns(t *testing.T) {
	base := t.TempDir()
	core, logs := observer.New(zap.WarnLevel)
	ex := &fakeExecutor{responses: map[string]response{
		base: {lines: []string{"error: could not find `Cargo.toml`"}, code: runner.ToleratedExitCode},
	}}
	out, err := Run(context.Background(), Config{Base: base}, Deps{
		Executor: ex,
		Locator:  &staticLocator{},
		Log:      zap.New(core).Sugar(),
	})
	require.NoError(t, err)
	assert.Zero(t, out.Len())
	assert.Equal(t, 1, logs.FilterMessage("clippy failed without reporting an error diagnostic").Len())
}

func TestJobsBoundConcurrency(t *testing.T) {
	base := t.TempDir()
	projects := projectsUnder(base, "a", "b", "c", "d", "e", "f")
	ex := &fakeExecutor{delay: 10 * time.Millisecond}
	out, err := Run(context.Background(), Config{Base: base, Glob: "*", Jobs: 2}, Deps{
		Executor: ex,
		Locator:  &staticLocator{projects: projects},
	})
	require.NoError(t, err)
	assert.Zero(t, out.Len())
	assert.Len(t, ex.ranDirs(), len(projects))
	assert.LessOrEqual(t, ex.maxSeen.Load(), int32(2))
	assert.GreaterOrEqual(t, ex.maxSeen.Load(), int32(1))
}

func TestZeroJobsRunsSequentially(t *testing.T) {
	base := t.TempDir()
	ex := &fakeExecutor{delay: 5 * time.Millisecond}
	_, err := Run(context.Background(), Config{Base: base, Glob: "*", Jobs: 0}, Deps{
		Executor: ex,
		Locator:  &staticLocator{projects: projectsUnder(base, "a", "b", "c")},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), ex.maxSeen.Load())
}

func TestProjectLinesStayContiguous(t *testing.T) {
	base := t.TempDir()
	projects := projectsUnder(base, "a", "b", "c", "d")
	responses := make(map[string]response, len(projects))
	for _, p := range projects {
		var lines []string
		for i := 1; i <= 5; i++ {
			lines = append(lines, compilerMessage(t, "warning", p.Rel, "src/lib.rs", i, 1))
		}
		responses[p.Dir] = response{lines: lines}
	}
	out, err := Run(context.Background(), Config{Base: base, Glob: "*", Jobs: 4}, Deps{
		Executor: &fakeExecutor{responses: responses},
		Locator:  &staticLocator{projects: projects},
	})
	require.NoError(t, err)

	lines := out.Lines()
	require.Len(t, lines, 20)
	for i := 0; i < len(lines); i += 5 {
		for j := 1; j < 5; j++ {
			assert.Equal(t, lines[i][len(lines[i])-1], lines[i+j][len(lines[i+j])-1],
				"lines of one project must not interleave")
		}
	}
}

func TestDedupe(t *testing.T) {
	base := t.TempDir()
	line := compilerMessage(t, "warning", "w", "src/lib.rs", 1, 1)
	ex := &fakeExecutor{responses: map[string]response{base: {lines: []string{line, line}}}}

	out, err := Run(context.Background(), Config{Base: base}, Deps{Executor: ex})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	out, err = Run(context.Background(), Config{Base: base, Dedupe: true}, Deps{Executor: ex})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestRunTracesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)
	base := t.TempDir()

	_, err := Run(ctx, Config{Base: base, Glob: "*"}, Deps{
		Executor: &fakeExecutor{},
		Locator:  &staticLocator{projects: projectsUnder(base, "a")},
	})
	require.NoError(t, err)
	s := buf.String()
	assert.Contains(t, s, "→ driver:run")
	assert.Contains(t, s, "driver:locate")
	assert.Contains(t, s, "project:a")
	assert.Contains(t, s, "command:cargo")
	assert.Contains(t, s, "← driver:run")
}
