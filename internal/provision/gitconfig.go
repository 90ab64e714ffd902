package provision

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/spf13/afero"
)

const gitConfigName = ".gitconfig"

type gitConfig struct {
	raw *config.Config
}

// insteadOf adds url.<base>.insteadOf = <prefix> unless present.
func (g *gitConfig) insteadOf(base, prefix string) {
	sub := g.raw.Section("url").Subsection(base)
	for _, v := range sub.OptionAll("insteadOf") {
		if v == prefix {
			return
		}
	}
	sub.AddOption("insteadOf", prefix)
}

// editGitConfig applies fn to the global git config of the provisioned home.
func (h *Host) editGitConfig(fn func(*gitConfig)) error {
	path := filepath.Join(h.settings.Home, gitConfigName)
	cfg := config.New()

	data, err := afero.ReadFile(h.fs, path)
	switch {
	case err == nil:
		if err := config.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return errors.Wrapf(err, "parse %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return errors.Wrapf(err, "read %s", path)
	}

	fn(&gitConfig{raw: cfg})

	var buf bytes.Buffer
	if err := config.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return writeFile(h.fs, path, buf.Bytes(), 0o644)
}

func writeFile(fsys afero.Fs, path string, data []byte, mode os.FileMode) error {
	if err := afero.WriteFile(fsys, path, data, mode); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	// WriteFile keeps the mode of an existing file
	if err := fsys.Chmod(path, mode); err != nil {
		return errors.Wrapf(err, "chmod %s", path)
	}
	return nil
}
