// Package cmd provides CLI commands for the procdash tool.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/procdash/procdash/internal/exitcode"
)

// Version is the procdash version, overridable at build time via
// -ldflags "-X github.com/procdash/procdash/internal/cmd.Version=...".
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "procdash",
	Short:   "Real-time dashboard server for PM2-managed processes",
	Version: Version,
	Long: `procdash serves a live dashboard for a PM2-style process manager.

It polls the manager's runtime state, derives a normalized per-process
view (status, restarts, CPU, memory, tailed logs), and pushes it to all
connected WebSocket clients. Clients can issue control commands —
start, stop, restart, reset, clear logs — against one process or all of
them; the dashboard resyncs immediately after each successful mutation.`,
	SilenceUsage: true,
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return exitcode.Code(err)
	}
	return exitcode.Success
}
