package provision

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Settings is the credential and toolchain part of the configuration.
type Settings struct {
	Home               string
	SSHKey             string // base64 encoded private key
	GitToken           string
	GitTokenReplaceSSH bool
	Toolchain          string
}

// Effects tells the runner how provisioning changed command construction.
type Effects struct {
	UseSSHAgent  bool
	SSHKeyPath   string
	FetchWithCLI bool
}

// Provisioner prepares the host once per process.
type Provisioner interface {
	Setup(ctx context.Context) (Effects, error)
}

// Nop provisions nothing.
type Nop struct{}

func (Nop) Setup(context.Context) (Effects, error) { return Effects{}, nil }

// Host provisions the machine the process runs on.
type Host struct {
	fs       afero.Fs
	cmd      Commander
	log      *zap.SugaredLogger
	out      io.Writer
	settings Settings
}

// NewHost wires a Host. out receives toolchain information and must not be
// the annotation stream.
func NewHost(fsys afero.Fs, cmd Commander, log *zap.SugaredLogger, out io.Writer, s Settings) *Host {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if cmd == nil {
		cmd = ExecCommander{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if out == nil {
		out = io.Discard
	}
	return &Host{fs: fsys, cmd: cmd, log: log, out: out, settings: s}
}

// Setup installs credentials and the toolchain, in that order.
func (h *Host) Setup(ctx context.Context) (Effects, error) {
	var eff Effects
	s := h.settings

	if s.SSHKey != "" {
		path, err := h.installSSHKey()
		if err != nil {
			return Effects{}, err
		}
		eff.UseSSHAgent = true
		eff.SSHKeyPath = path
		h.log.Infow("ssh key installed", "path", path)
	}
	if s.GitToken != "" {
		if err := h.installGitToken(); err != nil {
			return Effects{}, err
		}
		eff.FetchWithCLI = true
		h.log.Infow("git token configured", "replace_ssh", s.GitTokenReplaceSSH)
	}
	if s.Toolchain != "" {
		if err := h.installToolchain(ctx, s.Toolchain); err != nil {
			return Effects{}, err
		}
	}
	return eff, nil
}
