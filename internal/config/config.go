// Package config resolves the run configuration from command-line flags and
// GitHub Actions inputs.
//
// Actions pass inputs to the process as INPUT_<NAME> environment variables.
// The runner keeps dashes in those names for container actions, so both
// INPUT_GIT-TOKEN and INPUT_GIT_TOKEN are accepted. An explicitly set flag
// always wins over the environment.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "INPUT"

const (
	KeyWorkspace          = "workspace"
	KeyGlob               = "glob"
	KeyArgs               = "args"
	KeyThreads            = "threads"
	KeySSHKey             = "ssh-key"
	KeyGitToken           = "git-token"
	KeyGitTokenReplaceSSH = "git-token-replace-ssh"
	KeyToolchain          = "toolchain"
	KeyHome               = "home"
	KeyFormat             = "format"
	KeyMax                = "max"
	KeyDedupe             = "dedupe"
	KeyVerbose            = "verbose"
)

const (
	FormatGitHub = "github"
	FormatJSON   = "json"
)

var inputKeys = []string{
	KeyWorkspace, KeyGlob, KeyArgs, KeyThreads,
	KeySSHKey, KeyGitToken, KeyGitTokenReplaceSSH, KeyToolchain,
	KeyHome, KeyFormat, KeyMax, KeyDedupe, KeyVerbose,
}

// Config is an immutable snapshot shared by every project run.
type Config struct {
	Workspace          string `mapstructure:"workspace"`
	Glob               string `mapstructure:"glob"`
	Args               string `mapstructure:"args"`
	Threads            int    `mapstructure:"threads"`
	SSHKey             string `mapstructure:"ssh-key"`
	GitToken           string `mapstructure:"git-token"`
	GitTokenReplaceSSH bool   `mapstructure:"git-token-replace-ssh"`
	Toolchain          string `mapstructure:"toolchain"`
	Home               string `mapstructure:"home"`
	Format             string `mapstructure:"format"`
	Max                int    `mapstructure:"max"`
	Dedupe             bool   `mapstructure:"dedupe"`
	Verbose            int    `mapstructure:"verbose"`
}

// RegisterFlags defines one flag per configuration key.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyWorkspace, "C", ".", "base directory (defaults to GITHUB_WORKSPACE when set)")
	fs.StringP(KeyGlob, "g", "", "glob selecting project directories under the workspace")
	fs.String(KeyArgs, "", "extra arguments appended to the clippy command")
	fs.IntP(KeyThreads, "j", 1, "number of projects checked concurrently")
	fs.String(KeySSHKey, "", "base64 encoded ssh private key for private dependencies")
	fs.String(KeyGitToken, "", "token used to fetch private dependencies over https")
	fs.Bool(KeyGitTokenReplaceSSH, false, "also route ssh github urls through the token")
	fs.String(KeyToolchain, "", "rust toolchain to install before running")
	fs.String(KeyHome, "/root", "HOME used for credentials and the clippy process")
	fs.String(KeyFormat, FormatGitHub, "output format (github|json)")
	fs.Int(KeyMax, 0, "maximum number of diagnostics in json output (0 = all)")
	fs.Bool(KeyDedupe, false, "drop repeated identical annotations")
	fs.CountP(KeyVerbose, "v", "increase log verbosity")
}

// NewViper builds the resolution chain: flags > INPUT_* env > defaults.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	BindInputEnv(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(err, "bind flags")
		}
	}
	return v, nil
}

// SetDefaults configures default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyWorkspace, ".")
	v.SetDefault(KeyThreads, 1)
	v.SetDefault(KeyHome, "/root")
	v.SetDefault(KeyFormat, FormatGitHub)
}

// BindInputEnv binds the dashed and underscored input variable of each key.
func BindInputEnv(v *viper.Viper) {
	for _, key := range inputKeys {
		upper := strings.ToUpper(key)
		names := []string{envPrefix + "_" + upper}
		if strings.Contains(upper, "-") {
			names = append(names, envPrefix+"_"+strings.ReplaceAll(upper, "-", "_"))
		}
		if key == KeyWorkspace {
			names = append(names, "GITHUB_WORKSPACE")
		}
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// Load unmarshals and validates the snapshot.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Workspace = strings.TrimSpace(c.Workspace)
	if c.Workspace == "" {
		c.Workspace = "."
	}
	c.Glob = strings.TrimSpace(c.Glob)
	c.Args = strings.TrimSpace(c.Args)
	c.Toolchain = strings.TrimSpace(c.Toolchain)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = FormatGitHub
	}
}

// Validate checks values that have no sensible fallback.
func (c Config) Validate() error {
	if c.Threads < 1 {
		return errors.WithHint(
			errors.Newf("threads must be at least 1, got %d", c.Threads),
			"use --threads=1 (or INPUT_THREADS) for sequential runs",
		)
	}
	switch c.Format {
	case FormatGitHub, FormatJSON:
	default:
		return errors.WithHint(
			errors.Newf("unknown format %q", c.Format),
			"supported formats: github, json",
		)
	}
	if c.Max < 0 {
		return errors.WithHint(
			errors.Newf("max must not be negative, got %d", c.Max),
			"use --max=0 to keep every diagnostic",
		)
	}
	if c.GitTokenReplaceSSH && c.GitToken == "" {
		return errors.WithHint(
			errors.New("git-token-replace-ssh requires git-token"),
			"set git-token or drop git-token-replace-ssh",
		)
	}
	return nil
}

// MultiProject reports whether a glob selects several project directories.
func (c Config) MultiProject() bool {
	return c.Glob != ""
}

// ExtraArgs returns the user arguments as the runner expects them.
func (c Config) ExtraArgs() []string {
	if c.Args == "" {
		return nil
	}
	return []string{c.Args}
}
