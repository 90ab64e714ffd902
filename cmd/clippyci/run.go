package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clippyci/internal/config"
	"clippyci/internal/diagfmt"
	"clippyci/internal/driver"
	"clippyci/internal/logger"
	"clippyci/internal/project"
	"clippyci/internal/provision"
	"clippyci/internal/runner"
	"clippyci/internal/trace"
)

func runCheck(cmd *cobra.Command, _ []string) error {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	log := logger.New(stderr, cfg.Verbose)
	defer func() { _ = log.Sync() }()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return errors.Wrap(err, "failed to get ui flag")
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return errors.Wrap(err, "failed to get timings flag")
	}

	eff, err := provisionHost(ctx, cfg, log, stderr)
	if err != nil {
		return err
	}

	dcfg := driver.Config{
		Base: cfg.Workspace,
		Glob: cfg.Glob,
		Jobs: cfg.Threads,
		Runner: runner.Options{
			ExtraArgs:    cfg.ExtraArgs(),
			UseSSHAgent:  eff.UseSSHAgent,
			SSHKeyPath:   eff.SSHKeyPath,
			FetchWithCLI: eff.FetchWithCLI,
			Home:         cfg.Home,
		},
		Dedupe: cfg.Dedupe,
	}
	deps := driver.Deps{
		Executor: runner.ExecExecutor{Stderr: stderr},
		Locator:  project.NewLocator(afero.NewOsFs(), log),
		Log:      log,
	}

	var out *driver.Output
	if shouldUseTUI(mode, cfg.MultiProject()) {
		out, err = runWithUI(ctx, "clippy "+cfg.Glob, dcfg, deps)
	} else {
		out, err = driver.Run(ctx, dcfg, deps)
	}
	if err != nil {
		dumpTraceRing(ctx, stderr)
		return err
	}

	if showTimings {
		printTimings(stderr, out.Timings())
	}
	return writeOutput(cmd.OutOrStdout(), cfg, out)
}

func provisionHost(ctx context.Context, cfg config.Config, log *zap.SugaredLogger, stderr io.Writer) (provision.Effects, error) {
	settings := provision.Settings{
		Home:               cfg.Home,
		SSHKey:             cfg.SSHKey,
		GitToken:           cfg.GitToken,
		GitTokenReplaceSSH: cfg.GitTokenReplaceSSH,
		Toolchain:          cfg.Toolchain,
	}
	var p provision.Provisioner = provision.Nop{}
	if settings.SSHKey != "" || settings.GitToken != "" || settings.Toolchain != "" {
		p = provision.NewHost(afero.NewOsFs(), provision.ExecCommander{Stderr: stderr}, log, stderr, settings)
	}
	eff, err := p.Setup(ctx)
	if err != nil {
		return provision.Effects{}, errors.Wrap(err, "provision")
	}
	return eff, nil
}

func writeOutput(w io.Writer, cfg config.Config, out *driver.Output) error {
	switch cfg.Format {
	case config.FormatJSON:
		opts := diagfmt.JSONOpts{PathMode: diagfmt.PathModeRaw, Max: cfg.Max}
		if cfg.MultiProject() {
			base, err := filepath.Abs(cfg.Workspace)
			if err != nil {
				return errors.Wrap(err, "resolve workspace")
			}
			opts.PathMode = diagfmt.PathModeProject
			opts.BaseDir = base
		}
		return errors.Wrap(diagfmt.JSON(w, out.Diagnostics(), opts), "write json")
	default:
		return driver.Drain(w, out)
	}
}

// reportError prints err for the CI log. A fatal tool exit gets the short
// form the workflow log is searched for.
func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		red.Fprintf(w, "clippy exited with code %d\n", exitErr.Code)
		return
	}
	red.Fprint(w, "error: ")
	_, _ = io.WriteString(w, err.Error()+"\n")
	for _, hint := range errors.GetAllHints(err) {
		_, _ = io.WriteString(w, "hint: "+hint+"\n")
	}
}

func dumpTraceRing(ctx context.Context, w io.Writer) {
	ring := trace.RingOf(trace.FromContext(ctx))
	if ring == nil {
		return
	}
	_, _ = io.WriteString(w, "trace (most recent events):\n")
	_ = ring.Dump(w, trace.FormatText)
}
