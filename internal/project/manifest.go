package project

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// ManifestName is the per-project descriptor that marks a directory as a
// unit of analysis work.
const ManifestName = "Cargo.toml"

type manifestConfig struct {
	Package   packageConfig   `toml:"package"`
	Workspace workspaceConfig `toml:"workspace"`
}

type packageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type workspaceConfig struct {
	Members []string `toml:"members"`
}

// Manifest is the subset of Cargo.toml the tool reports on.
type Manifest struct {
	Name      string
	Version   string
	Workspace bool
	Members   []string
}

// LoadManifest decodes the manifest at path. A manifest with neither a
// [package] nor a [workspace] table is rejected.
func LoadManifest(fsys afero.Fs, path string) (Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Manifest{}, errors.Wrapf(err, "%s: read manifest", path)
	}
	var cfg manifestConfig
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Manifest{}, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if !meta.IsDefined("package") && !meta.IsDefined("workspace") {
		return Manifest{}, errors.Newf("%s: missing [package] or [workspace]", path)
	}
	if meta.IsDefined("package") && strings.TrimSpace(cfg.Package.Name) == "" {
		return Manifest{}, errors.Newf("%s: missing [package].name", path)
	}
	return Manifest{
		Name:      strings.TrimSpace(cfg.Package.Name),
		Version:   strings.TrimSpace(cfg.Package.Version),
		Workspace: meta.IsDefined("workspace"),
		Members:   cfg.Workspace.Members,
	}, nil
}
