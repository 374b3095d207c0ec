// Package cli defines the Cobra command tree for the superclaude update
// helper. Each file registers one top-level command with the root command.
// Command implementations delegate to internal packages for detection,
// version checks and upgrades, and only handle flags and output.
package cli
