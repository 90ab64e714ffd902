package runner

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

const (
	// DefaultHome is forced for the tool process. Container runners inject a
	// HOME that does not match the user cargo and rustup were installed for.
	DefaultHome = "/root"
	// FetchWithCLIEnv makes cargo fetch git dependencies with the git binary,
	// which honours the credential URL rewrites.
	FetchWithCLIEnv = "CARGO_NET_GIT_FETCH_WITH_CLI"
)

// DefaultTool is the analysis invocation: streaming JSON diagnostics, verbose.
var DefaultTool = []string{"cargo", "clippy", "--message-format=json", "--verbose"}

// Options configures command construction. It is shared read-only by all
// project runs.
type Options struct {
	Tool         []string
	ExtraArgs    []string
	UseSSHAgent  bool
	SSHKeyPath   string
	FetchWithCLI bool
	Home         string
}

// Command is one fully constructed tool invocation.
type Command struct {
	Dir     string
	Env     []string // KEY=VALUE overrides, applied after the inherited env
	Prelude []string // shell statements that must run first, joined with &&
	Args    []string
	Extra   string // user arguments, appended verbatim
}

// Build constructs the invocation for dir.
func Build(dir string, opts Options) Command {
	tool := opts.Tool
	if len(tool) == 0 {
		tool = DefaultTool
	}
	home := opts.Home
	if home == "" {
		home = DefaultHome
	}

	cmd := Command{
		Dir:   dir,
		Args:  append([]string(nil), tool...),
		Extra: strings.TrimSpace(strings.Join(opts.ExtraArgs, " ")),
	}
	if opts.UseSSHAgent {
		cmd.Prelude = append(cmd.Prelude, `eval "$(ssh-agent -s)"`)
		if opts.SSHKeyPath != "" {
			cmd.Prelude = append(cmd.Prelude, "ssh-add "+shellquote.Join(opts.SSHKeyPath))
		}
	}
	if opts.FetchWithCLI {
		cmd.Env = append(cmd.Env, FetchWithCLIEnv+"=true")
	}
	cmd.Env = append(cmd.Env, "HOME="+home)
	return cmd
}

// NeedsShell reports whether the command has to run under sh -c.
func (c Command) NeedsShell() bool {
	return len(c.Prelude) > 0
}

// Script renders the command as one shell line:
//
//	[prelude && ...] [KEY=VALUE ...] tool args [extra]
func (c Command) Script() string {
	var b strings.Builder
	for _, stmt := range c.Prelude {
		b.WriteString(stmt)
		b.WriteString(" && ")
	}
	if len(c.Env) > 0 {
		b.WriteString(shellquote.Join(c.Env...))
		b.WriteByte(' ')
	}
	b.WriteString(shellquote.Join(c.Args...))
	if c.Extra != "" {
		b.WriteByte(' ')
		b.WriteString(c.Extra)
	}
	return b.String()
}

// Argv returns the argument list used when no shell is needed. Extra
// arguments are split shell-style; unbalanced quotes fall back to splitting
// on whitespace.
func (c Command) Argv() []string {
	argv := append([]string(nil), c.Args...)
	return append(argv, SplitExtra(c.Extra)...)
}

// SplitExtra splits raw user arguments the way sh would.
func SplitExtra(extra string) []string {
	if strings.TrimSpace(extra) == "" {
		return nil
	}
	words, err := shellquote.Split(extra)
	if err != nil {
		return strings.Fields(extra)
	}
	return words
}
