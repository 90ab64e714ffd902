package provision

import (
	"encoding/base64"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	sshDirMode   = 0o700
	sshKeyMode   = 0o600
	sshKeyName   = "id_rsa"
	githubHTTPS  = "https://github.com/"
	githubSSH    = "git@github.com:"
	githubSSHURL = "ssh://git@github.com/"
)

// installSSHKey decodes the key into <home>/.ssh/id_rsa and routes github
// HTTPS URLs through SSH.
func (h *Host) installSSHKey() (string, error) {
	key, err := decodeKey(h.settings.SSHKey)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(h.settings.Home, ".ssh")
	if err := h.fs.MkdirAll(dir, sshDirMode); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	if err := h.fs.Chmod(dir, sshDirMode); err != nil {
		return "", errors.Wrapf(err, "chmod %s", dir)
	}
	path := filepath.Join(dir, sshKeyName)
	if err := writeFile(h.fs, path, key, sshKeyMode); err != nil {
		return "", err
	}
	if err := h.editGitConfig(func(gc *gitConfig) {
		gc.insteadOf(githubSSH, githubHTTPS)
	}); err != nil {
		return "", err
	}
	return path, nil
}

func decodeKey(encoded string) ([]byte, error) {
	compact := strings.Join(strings.Fields(encoded), "")
	key, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "decode ssh key"),
			"the ssh-key input must be the base64 encoded private key",
		)
	}
	if len(key) == 0 {
		return nil, errors.New("decoded ssh key is empty")
	}
	if key[len(key)-1] != '\n' {
		// ssh-add rejects keys without a trailing newline
		key = append(key, '\n')
	}
	return key, nil
}
