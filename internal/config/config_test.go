package config

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	v, err := NewViper(fs)
	require.NoError(t, err)
	return Load(v)
}

func TestDefaults(t *testing.T) {
	t.Setenv("GITHUB_WORKSPACE", "")
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Workspace)
	assert.Equal(t, 1, cfg.Threads)
	assert.Equal(t, "/root", cfg.Home)
	assert.Equal(t, FormatGitHub, cfg.Format)
	assert.Zero(t, cfg.Max)
	assert.False(t, cfg.MultiProject())
	assert.Nil(t, cfg.ExtraArgs())
}

func TestFlags(t *testing.T) {
	cfg, err := load(t, "-C", "/ws", "--glob", "crates/*", "-j", "4", "--args", "--all-features -- -D warnings", "-vv", "--format", "JSON")
	require.NoError(t, err)

	assert.Equal(t, "/ws", cfg.Workspace)
	assert.Equal(t, "crates/*", cfg.Glob)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, 2, cfg.Verbose)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.MultiProject())
	assert.Equal(t, []string{"--all-features -- -D warnings"}, cfg.ExtraArgs())
}

func TestActionInputs(t *testing.T) {
	t.Setenv("INPUT_GLOB", "services/**")
	t.Setenv("INPUT_THREADS", "3")
	t.Setenv("INPUT_GIT_TOKEN", "ghs_x")
	t.Setenv("INPUT_GIT_TOKEN_REPLACE_SSH", "true")
	t.Setenv("INPUT_TOOLCHAIN", " nightly ")
	t.Setenv("INPUT_MAX", "25")
	t.Setenv("GITHUB_WORKSPACE", "/github/workspace")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "services/**", cfg.Glob)
	assert.Equal(t, 3, cfg.Threads)
	assert.Equal(t, "ghs_x", cfg.GitToken)
	assert.True(t, cfg.GitTokenReplaceSSH)
	assert.Equal(t, "nightly", cfg.Toolchain)
	assert.Equal(t, 25, cfg.Max)
	assert.Equal(t, "/github/workspace", cfg.Workspace)
}

func TestFlagBeatsInput(t *testing.T) {
	t.Setenv("INPUT_THREADS", "8")
	cfg, err := load(t, "--threads", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Threads)
}

func TestInputWorkspaceBeatsGitHubWorkspace(t *testing.T) {
	t.Setenv("INPUT_WORKSPACE", "/custom")
	t.Setenv("GITHUB_WORKSPACE", "/github/workspace")
	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "/custom", cfg.Workspace)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"zero threads", Config{Threads: 0, Format: FormatGitHub}, "threads must be at least 1"},
		{"negative threads", Config{Threads: -2, Format: FormatGitHub}, "threads must be at least 1"},
		{"format", Config{Threads: 1, Format: "sarif"}, `unknown format "sarif"`},
		{"negative max", Config{Threads: 1, Format: FormatJSON, Max: -1}, "max must not be negative"},
		{"replace ssh without token", Config{Threads: 1, Format: FormatGitHub, GitTokenReplaceSSH: true}, "requires git-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
	assert.NoError(t, Config{Threads: 1, Format: FormatJSON}.Validate())
}

func TestLoadRejectsZeroThreads(t *testing.T) {
	_, err := load(t, "--threads", "0")
	require.Error(t, err)
}
