package driver

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clippyci/internal/cargo"
	"clippyci/internal/diag"
	"clippyci/internal/diagfmt"
	"clippyci/internal/observ"
	"clippyci/internal/pipeline"
	"clippyci/internal/project"
	"clippyci/internal/runner"
	"clippyci/internal/trace"
)

// Config is the read-only input of one run.
type Config struct {
	Base   string
	Glob   string // empty: check Base only
	Jobs   int
	Runner runner.Options
	Dedupe bool
}

// ProjectLocator expands a glob into project directories and describes the
// base directory when no glob is set.
type ProjectLocator interface {
	Locate(base, pattern string) ([]project.Project, error)
	Root(dir string) project.Project
}

// Deps are the collaborators of a run. Executor is required.
type Deps struct {
	Executor runner.Executor
	Locator  ProjectLocator
	Log      *zap.SugaredLogger
	Progress pipeline.Sink
	OnState  StateObserver
}

type run struct {
	cfg    Config
	deps   Deps
	out    *Output
	opts   diagfmt.AnnotationOpts
	tracer trace.Tracer
	rootID uint64
}

// Run executes the configured check and returns the collected output. On a
// fatal tool outcome it returns the first such error and no output.
func Run(ctx context.Context, cfg Config, deps Deps) (*Output, error) {
	if deps.Executor == nil {
		return nil, errors.New("driver: no executor")
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	if deps.Progress == nil {
		deps.Progress = pipeline.NopSink{}
	}
	if deps.OnState == nil {
		deps.OnState = func(State) {}
	}
	if deps.Locator == nil {
		deps.Locator = project.NewLocator(nil, deps.Log)
	}
	// runs still in flight after a fatal return must not reach the caller's sink
	progress := newGatedSink(deps.Progress)
	defer progress.close()
	deps.Progress = progress

	base, err := filepath.Abs(cfg.Base)
	if err != nil {
		return nil, errors.Wrap(err, "resolve workspace")
	}
	cfg.Base = base

	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "run", trace.ParentID(ctx))
	defer root.End("")

	r := &run{
		cfg:    cfg,
		deps:   deps,
		out:    NewOutput(),
		tracer: tracer,
		rootID: root.ID(),
	}
	deps.OnState(StateIdle)

	projects, err := r.locate()
	if err != nil {
		return nil, err
	}

	if cfg.Glob == "" {
		deps.OnState(StateSingleRun)
		r.opts = diagfmt.AnnotationOpts{PathMode: diagfmt.PathModeRaw}
	} else {
		deps.OnState(StateFanOut)
		r.opts = diagfmt.AnnotationOpts{PathMode: diagfmt.PathModeProject, BaseDir: base}
	}

	span := trace.Begin(tracer, trace.ScopeDriver, "dispatch", r.rootID)
	err = r.dispatch(ctx, projects)
	span.WithExtra("projects", strconv.Itoa(len(projects))).End(errDetail(err))
	if err != nil {
		return nil, err
	}
	deps.OnState(StateDone)
	return r.out, nil
}

// locate resolves the project list.
func (r *run) locate() ([]project.Project, error) {
	r.deps.OnState(StateLocating)
	if r.cfg.Glob == "" {
		p := r.deps.Locator.Root(r.cfg.Base)
		p.Dir, p.Rel = r.cfg.Base, "."
		return []project.Project{p}, nil
	}

	span := trace.Begin(r.tracer, trace.ScopeDriver, "locate", r.rootID)
	r.deps.Progress.OnEvent(pipeline.Event{Stage: pipeline.StageLocate, Status: pipeline.StatusWorking})
	start := time.Now()
	projects, err := r.deps.Locator.Locate(r.cfg.Base, r.cfg.Glob)
	if err != nil {
		span.End(err.Error())
		r.deps.Progress.OnEvent(pipeline.Event{Stage: pipeline.StageLocate, Status: pipeline.StatusError, Err: err})
		return nil, errors.Wrapf(err, "locate projects matching %q", r.cfg.Glob)
	}
	span.WithExtra("matched", strconv.Itoa(len(projects))).End("")
	r.deps.Progress.OnEvent(pipeline.Event{Stage: pipeline.StageLocate, Status: pipeline.StatusDone, Elapsed: time.Since(start)})

	if len(projects) == 0 {
		r.deps.Log.Warnw("no projects matched", "glob", r.cfg.Glob, "workspace", r.cfg.Base)
	} else {
		r.deps.Log.Infow("projects located", "glob", r.cfg.Glob, "count", len(projects))
	}
	return projects, nil
}

// dispatch runs every project on the worker pool. It returns as soon as the
// first fatal error is known; runs still in flight are left to finish on ctx
// and their results are discarded.
func (r *run) dispatch(ctx context.Context, projects []project.Project) error {
	if len(projects) == 0 {
		r.deps.OnState(StateDraining)
		return nil
	}
	for _, p := range projects {
		r.deps.Progress.OnEvent(pipeline.Event{Project: p.Label(), Status: pipeline.StatusQueued})
	}

	jobs := r.cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(projects)))

	fatal := make(chan error, 1)
	done := make(chan struct{})
	var waitErr error

	go func() {
		defer close(done)
		for _, p := range projects {
			g.Go(func() error {
				// no new project starts once another one failed fatally
				select {
				case <-gctx.Done():
					r.deps.Progress.OnEvent(pipeline.Event{Project: p.Label(), Status: pipeline.StatusSkipped})
					return gctx.Err()
				default:
				}
				// started runs use ctx so a sibling failure does not kill them
				err := r.runProject(ctx, p)
				if runner.IsFatal(err) {
					select {
					case fatal <- err:
					default:
					}
				}
				return err
			})
		}
		waitErr = g.Wait()
	}()

	r.deps.OnState(StateDraining)
	select {
	case err := <-fatal:
		return err
	case <-done:
		return waitErr
	}
}

// runProject runs the tool in one directory and appends its annotations.
func (r *run) runProject(ctx context.Context, p project.Project) error {
	label := p.Label()
	log := r.deps.Log.With("project", label)
	timer := observ.NewTimer()

	span := trace.Begin(r.tracer, trace.ScopeProject, label, r.rootID)
	r.deps.Progress.OnEvent(pipeline.Event{Project: label, Stage: pipeline.StageRun, Status: pipeline.StatusWorking})
	start := time.Now()

	cmd := runner.Build(p.Dir, r.cfg.Runner)
	log.Debugw("running", "dir", p.Dir, "command", cmd.Script())

	cmdSpan := trace.Begin(r.tracer, trace.ScopeCommand, cmd.Args[0], span.ID())
	phase := timer.Begin("run")
	res, err := runner.Run(ctx, r.deps.Executor, p.Dir, r.cfg.Runner)
	timer.End(phase, "exit "+strconv.Itoa(res.ExitCode))
	cmdSpan.WithExtra("exit", strconv.Itoa(res.ExitCode)).End(outcomeDetail(res, err))

	if err != nil {
		span.End(err.Error())
		r.deps.Progress.OnEvent(pipeline.Event{
			Project:  label,
			Stage:    pipeline.StageRun,
			Status:   pipeline.StatusError,
			Err:      err,
			Elapsed:  time.Since(start),
			ExitCode: res.ExitCode,
		})
		log.Errorw("clippy failed", "error", err)
		return err
	}
	tolerated := res.Outcome == runner.OutcomeTolerated

	r.deps.Progress.OnEvent(pipeline.Event{Project: label, Stage: pipeline.StageCollect, Status: pipeline.StatusWorking})
	phase = timer.Begin("collect")
	bag := diag.NewBag(len(res.Lines))
	var rep diag.Reporter = diag.BagReporter{Bag: bag}
	if r.cfg.Dedupe {
		rep = diag.NewDedupReporter(rep)
	}
	stats := cargo.Collect(res.Lines, p.Dir, rep, log)
	lines := diagfmt.Annotations(bag, r.opts)
	timer.End(phase, strconv.Itoa(len(lines))+" annotations")

	if tolerated {
		if bag.HasErrors() {
			log.Infow("clippy reported compile errors", "exit_code", res.ExitCode)
		} else {
			// cargo uses the same code for its own failures, e.g. a missing manifest
			log.Warnw("clippy failed without reporting an error diagnostic", "exit_code", res.ExitCode)
		}
	}

	r.out.Append(lines...)
	r.out.AddDiagnostics(bag)
	report := timer.Report()
	report.Label = label
	r.out.addTiming(report)

	errs, warns := bag.Counts()
	log.Debugw("collected",
		"accepted", stats.Accepted,
		"ignored", stats.Ignored,
		"skipped", stats.Skipped,
		"errors", errs,
		"warnings", warns,
		"annotations", len(lines),
	)
	span.WithExtra("annotations", strconv.Itoa(len(lines))).End(res.Outcome.String())
	r.deps.Progress.OnEvent(pipeline.Event{
		Project:     label,
		Stage:       pipeline.StageCollect,
		Status:      pipeline.StatusDone,
		Elapsed:     time.Since(start),
		ExitCode:    res.ExitCode,
		Annotations: len(lines),
	})
	return nil
}

func outcomeDetail(res runner.Result, err error) string {
	var startErr *runner.StartError
	if errors.As(err, &startErr) {
		return "not started"
	}
	return res.Outcome.String()
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
