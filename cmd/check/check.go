// cmd/check/check.go
package check

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_cli"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_io"
)

// CheckCmd represents the 'sqlprobe check' command
var CheckCmd = &cobra.Command{
	Use:   "check [command]",
	Short: "Check connectivity to SQL Server targets",
	Long:  `Check connectivity and diagnostic state of SQL Server targets.`,
	RunE: probe_cli.Wrap(func(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}
