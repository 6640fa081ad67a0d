/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Subcommands
	"github.com/CodeMonkeyCybersecurity/sqlprobe/cmd/check"

	// Internal packages
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_cli"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_err"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_io"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/shared"
)

// RootCmd is the base command for sqlprobe.
var RootCmd = &cobra.Command{
	Use:     "sqlprobe",
	Short:   "Diagnostic probes for SQL Server connectivity",
	Version: shared.Version,
	Long: `sqlprobe tests connectivity to a Microsoft SQL Server instance and reports
either a boolean (quiet mode) or a diagnostic record: server identity,
auth scheme, encryption status and uptime.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		probe_err.SetDebugMode(debug)
	},
	RunE: probe_cli.Wrap(func(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "Treat unexpected errors as fatal with full detail")
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	RootCmd.AddCommand(check.CheckCmd)
}

// Execute initializes and runs the root command.
func Execute() {
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to flush logs: %v\n", err)
		}
	}()

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		probe_err.PrintError("sqlprobe failed", err)
		os.Exit(probe_err.GetExitCode(err))
	}
}
