package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clippyci/internal/config"
	"clippyci/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "clippyci",
	Short: "Run cargo clippy and report findings as GitHub annotations",
	Long: `clippyci runs cargo clippy in one or more Rust projects and prints every
warning and error as a GitHub Actions workflow command, so findings show up
inline on the pull request.

Every flag can also be given as a GitHub Actions input (INPUT_<NAME>).`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

// main wires the commands and exits 1 on any error. Errors are reported by
// the command itself so stdout stays clean.
func main() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(versionCmd)

	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().String("ui", "auto", "progress UI on stderr (auto|on|off)")
	rootCmd.Flags().Bool("timings", false, "print per-project timings to stderr")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in the trace ring")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "heartbeat interval while tracing (0 disables)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
