// Package provision prepares the host before any analysis runs: private git
// credentials for dependency fetching and the requested Rust toolchain.
//
// Everything here touches global state (the home directory, the global git
// config, rustup), so the driver never calls it directly. The command layer
// runs a Provisioner once and hands the resulting Effects to the runner.
package provision
