// Package runner builds and executes the clippy invocation for one project
// directory and classifies how the process ended.
//
// # Command construction
//
// Build assembles a Command from Options. The command is kept structured
// (environment overrides, optional shell prelude, tool argv, raw extra
// arguments) so it can be inspected without running anything. Script renders
// the equivalent single shell line; it is the only place a shell line is
// produced and the form that is logged.
//
// A shell is only used when the SSH agent must be started in the same
// process tree as cargo. Otherwise the tool is started from an argument list
// and the extra arguments are split the way a POSIX shell would split them.
//
// # Exit policy
//
//	0    success
//	101  tolerated: cargo exits 101 whenever compilation fails, and the
//	     diagnostics explaining why are on stdout
//	*    fatal: the whole run stops
//
// Extra arguments are never escaped. Values containing shell metacharacters
// are interpreted by the shell when the SSH agent is in use.
package runner
