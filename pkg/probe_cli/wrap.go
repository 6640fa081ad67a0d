// pkg/probe_cli/wrap.go

package probe_cli

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_err"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_io"
)

// Wrap ensures panic recovery, telemetry, and logging around a command RunE.
func Wrap(fn func(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		rc := probe_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		probe_io.LogRuntimeExecutionContext(rc)

		err = fn(rc, cmd, args)
		if err != nil && !probe_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
