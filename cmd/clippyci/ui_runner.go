package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"clippyci/internal/driver"
	"clippyci/internal/pipeline"
	"clippyci/internal/ui"
)

type runOutcome struct {
	out *driver.Output
	err error
}

// runWithUI runs the driver while a progress view draws on stderr.
func runWithUI(ctx context.Context, title string, cfg driver.Config, deps driver.Deps) (*driver.Output, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		d := deps
		d.Progress = pipeline.ChannelSink{Ch: events}
		out, err := driver.Run(ctx, cfg, d)
		outcomeCh <- runOutcome{out: out, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the driver unblocked once nobody renders
		go func() {
			for range events {
			}
		}()
	}
	return settleUI(<-outcomeCh, uiErr, deps.Log)
}

// settleUI decides the result of a run drawn with the progress view. The
// view never changes the annotations or the exit status.
func settleUI(outcome runOutcome, uiErr error, log *zap.SugaredLogger) (*driver.Output, error) {
	if uiErr != nil && log != nil {
		log.Warnw("progress view failed", "error", uiErr)
	}
	if outcome.err != nil {
		return nil, outcome.err
	}
	return outcome.out, nil
}
