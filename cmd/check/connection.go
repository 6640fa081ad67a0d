// cmd/check/connection.go
package check

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/config"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/mssql"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_cli"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_err"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_io"
)

// ConnectionCmd represents the 'sqlprobe check connection' command
var ConnectionCmd = &cobra.Command{
	Use:     "connection [target]",
	Aliases: []string{"conn"},
	Short:   "Probe connectivity to a SQL Server instance",
	Long: `Probe connectivity to a SQL Server instance and report a diagnostic record.

Without a credential the probe uses integrated/trusted authentication. With
--username the password comes from --password, the SQLPROBE_PASSWORD
environment variable, or an interactive prompt.

The target can be given as a positional argument or via --host, with an
optional named instance and port: host, host\instance, host:1433.

Examples:
  sqlprobe check connection sql01.example.com
  sqlprobe check connection 'sql01\REPORTING' --username probe
  sqlprobe check connection sql01 --encrypt --quiet
  SQLPROBE_PASSWORD=secret sqlprobe check connection sql01 --username probe --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: probe_cli.Wrap(checkConnection),
}

func init() {
	probe_cli.AddStringFlag(ConnectionCmd, "host", "H", "", "Target host, host\\instance, or host:port", false)
	probe_cli.AddStringFlag(ConnectionCmd, "username", "u", "", "SQL login name (omit for integrated auth)", false)
	probe_cli.AddStringFlag(ConnectionCmd, "password", "p", "", "Password for --username (prefer SQLPROBE_PASSWORD or the prompt)", false)
	probe_cli.AddStringFlag(ConnectionCmd, "database", "d", "", "Database to connect to (default: "+config.DefaultDatabase+")", false)
	probe_cli.AddStringFlag(ConnectionCmd, "app-name", "", "", "Application name reported to the server", false)
	probe_cli.AddBoolFlag(ConnectionCmd, "encrypt", "", false, "Require an encrypted connection")
	probe_cli.AddBoolFlag(ConnectionCmd, "trust-server-certificate", "", false, "Skip server certificate validation")
	probe_cli.AddBoolFlag(ConnectionCmd, "quiet", "q", false, "Print only true or false; suppress all errors")
	probe_cli.AddBoolFlag(ConnectionCmd, "json", "", false, "Print the result record as JSON")

	CheckCmd.AddCommand(ConnectionCmd)
}

func checkConnection(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	v := config.New(rc.Log)
	if err := probe_cli.BindFlagsToViper(cmd, v); err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	asJSON, _ := cmd.Flags().GetBool("json")

	opts, err := buildOptions(rc, cmd, args, v)
	if err != nil {
		if quiet {
			logger.Debug("Quiet probe: option assembly failed", zap.Error(err))
			fmt.Println(false)
			return nil
		}
		return err
	}

	prober := probe.NewProber()

	if quiet {
		fmt.Println(prober.ProbeQuiet(rc, opts))
		return nil
	}

	result, err := prober.Probe(rc, opts)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(result)
	}
	return printRecord(result)
}

// buildOptions merges the positional target, flags, env, and config file
// into probe options, prompting for a password when appropriate.
func buildOptions(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string, v *viper.Viper) (*probe.Options, error) {
	target := v.GetString(config.KeyHost)
	if len(args) == 1 {
		target = args[0]
	}
	if target == "" {
		return nil, probe_err.NewExpectedError(fmt.Errorf("no target host given; pass one as an argument or with --host"))
	}

	host, instance, port := mssql.SplitHost(target)

	opts := &probe.Options{
		Host:                   host,
		Instance:               instance,
		Port:                   port,
		Database:               v.GetString(config.KeyDatabase),
		Username:               v.GetString(config.KeyUsername),
		Password:               v.GetString(config.KeyPassword),
		Encrypt:                v.GetBool(config.KeyEncrypt),
		TrustServerCertificate: v.GetBool("trust-server-certificate"),
		AppName:                v.GetString(config.KeyAppName),
	}

	if opts.Username != "" && opts.Password == "" && probe_io.IsInteractive() {
		password, err := probe_io.PromptSecurePassword(rc, fmt.Sprintf("Password for %s: ", opts.Username))
		if err != nil {
			return nil, probe_err.NewExpectedError(err)
		}
		opts.Password = password
	}

	return opts, nil
}

func printJSON(result *probe.ConnectionProbeResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printRecord(result *probe.ConnectionProbeResult) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	auth := "sql login"
	if result.TrustedAuth {
		auth = "integrated"
	}

	fmt.Fprintf(w, "ConnectString\t%s\n", result.ConnectString)
	fmt.Fprintf(w, "Authentication\t%s\n", auth)
	fmt.Fprintf(w, "SessionID\t%d\n", result.SessionID)
	fmt.Fprintf(w, "Login\t%s\n", result.Login)
	fmt.Fprintf(w, "ExecutionUser\t%s\n", result.ExecutionUser)
	fmt.Fprintf(w, "NetTransport\t%s\n", result.NetTransport)
	fmt.Fprintf(w, "AuthScheme\t%s\n", result.AuthScheme)
	fmt.Fprintf(w, "Encryption\t%s\n", result.Encryption)
	fmt.Fprintf(w, "ServerName\t%s\n", result.ServerName)
	fmt.Fprintf(w, "InstanceName\t%s\n", result.InstanceName)
	fmt.Fprintf(w, "SQLVersion\t%s\n", result.SQLVersion)
	fmt.Fprintf(w, "Edition\t%s\n", result.Edition)
	fmt.Fprintf(w, "StartTime\t%s\n", result.StartTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Uptime\t%s\n", result.Uptime.Round(time.Second))

	return w.Flush()
}
