package project

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func workspaceFS(t *testing.T) (afero.Fs, string) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	base := filepath.FromSlash("/ws")
	writeFile(t, fsys, filepath.Join(base, "Cargo.toml"), "[workspace]\nmembers = [\"crates/*\"]\n")
	writeFile(t, fsys, filepath.Join(base, "crates", "core", "Cargo.toml"), "[package]\nname = \"core\"\nversion = \"0.1.0\"\n")
	writeFile(t, fsys, filepath.Join(base, "crates", "cli", "Cargo.toml"), "[package]\nname = \"cli\"\n")
	writeFile(t, fsys, filepath.Join(base, "crates", "broken", "Cargo.toml"), "this is = = not toml")
	writeFile(t, fsys, filepath.Join(base, "crates", "docs", "README.md"), "no manifest here")
	writeFile(t, fsys, filepath.Join(base, "crates", "core", "fuzz", "Cargo.toml"), "[package]\nname = \"core-fuzz\"\n")
	writeFile(t, fsys, filepath.Join(base, ".git", "modules", "x", "Cargo.toml"), "[package]\nname = \"x\"\n")
	require.NoError(t, fsys.MkdirAll(filepath.Join(base, "crates", "Cargo.toml"), 0o755))
	return fsys, base
}

func rels(projects []Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Rel)
	}
	return out
}

func TestLocateSingleLevel(t *testing.T) {
	fsys, base := workspaceFS(t)
	projects, err := NewLocator(fsys, nil).Locate(base, "crates/*")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"crates/broken", "crates/cli", "crates/core"}, rels(projects))
	for _, p := range projects {
		assert.Equal(t, filepath.Join(base, filepath.FromSlash(p.Rel)), p.Dir)
		assert.Equal(t, filepath.Join(p.Dir, ManifestName), p.Manifest)
		switch p.Rel {
		case "crates/core":
			assert.Equal(t, "core", p.Name)
		case "crates/broken":
			assert.Empty(t, p.Name)
		}
	}
}

func TestLocateRecursive(t *testing.T) {
	fsys, base := workspaceFS(t)
	projects, err := NewLocator(fsys, nil).Locate(base, "./crates/**/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"crates/broken", "crates/cli", "crates/core", "crates/core/fuzz"}, rels(projects))

	projects, err = NewLocator(fsys, nil).Locate(base, "**")
	require.NoError(t, err)
	assert.NotContains(t, rels(projects), ".git/modules/x")
	assert.NotContains(t, rels(projects), ".")
}

func TestLocateBaseItself(t *testing.T) {
	fsys, base := workspaceFS(t)
	projects, err := NewLocator(fsys, nil).Locate(base, ".")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, base, projects[0].Dir)
}

func TestLocateNoMatches(t *testing.T) {
	fsys, base := workspaceFS(t)
	projects, err := NewLocator(fsys, nil).Locate(base, "services/*")
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestLocateErrors(t *testing.T) {
	fsys, base := workspaceFS(t)
	_, err := NewLocator(fsys, nil).Locate(base, "  ")
	require.Error(t, err)

	_, err = NewLocator(fsys, nil).Locate(base, "crates/[")
	require.Error(t, err)

	_, err = NewLocator(fsys, nil).Locate(filepath.FromSlash("/missing"), "*")
	require.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	fsys, base := workspaceFS(t)

	m, err := LoadManifest(fsys, filepath.Join(base, "crates", "core", "Cargo.toml"))
	require.NoError(t, err)
	assert.Equal(t, Manifest{Name: "core", Version: "0.1.0"}, m)

	m, err = LoadManifest(fsys, filepath.Join(base, "Cargo.toml"))
	require.NoError(t, err)
	assert.True(t, m.Workspace)
	assert.Equal(t, []string{"crates/*"}, m.Members)

	writeFile(t, fsys, filepath.Join(base, "empty", "Cargo.toml"), "[dependencies]\n")
	_, err = LoadManifest(fsys, filepath.Join(base, "empty", "Cargo.toml"))
	require.Error(t, err)

	writeFile(t, fsys, filepath.Join(base, "noname", "Cargo.toml"), "[package]\nversion = \"1.0.0\"\n")
	_, err = LoadManifest(fsys, filepath.Join(base, "noname", "Cargo.toml"))
	require.Error(t, err)
}

func TestFindManifest(t *testing.T) {
	fsys, base := workspaceFS(t)
	path, ok, err := FindManifest(fsys, filepath.Join(base, "crates", "docs"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "Cargo.toml"), path)

	path, ok, err = FindManifest(fsys, filepath.Join(base, "crates", "core", "src"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "crates", "core", "Cargo.toml"), path)

	_, ok, err = FindManifest(afero.NewMemMapFs(), filepath.FromSlash("/nowhere"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoot(t *testing.T) {
	fsys, base := workspaceFS(t)
	core, logs := observer.New(zap.WarnLevel)
	l := NewLocator(fsys, zap.New(core).Sugar())

	dir := filepath.Join(base, "crates", "core", "src")
	p := l.Root(dir)
	assert.Equal(t, dir, p.Dir, "the tool still runs where it was asked to")
	assert.Equal(t, ".", p.Rel)
	assert.Equal(t, "core", p.Name)
	assert.Equal(t, filepath.Join(base, "crates", "core", "Cargo.toml"), p.Manifest)
	assert.Zero(t, logs.Len())

	lonely := filepath.FromSlash("/elsewhere")
	p = NewLocator(afero.NewMemMapFs(), zap.New(core).Sugar()).Root(lonely)
	assert.Equal(t, Project{Dir: lonely, Rel: "."}, p)
	assert.Equal(t, 1, logs.FilterMessage("no Cargo.toml at or above workspace").Len())
}

func TestProjectLabel(t *testing.T) {
	assert.Equal(t, "crates/core (core)", Project{Rel: "crates/core", Name: "core"}.Label())
	assert.Equal(t, "crates/x", Project{Rel: "crates/x"}.Label())
	assert.Equal(t, "/ws", Project{Dir: "/ws"}.Label())
}
