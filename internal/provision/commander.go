package provision

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Commander runs a helper program and returns its stdout.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommander runs programs from PATH. Their stderr is passed through.
type ExecCommander struct {
	Stderr io.Writer
}

func (c ExecCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errors.Wrapf(err, "%s", name)
	}
	return stdout.Bytes(), nil
}
