// pkg/probe/probe.go

package probe

import (
	"database/sql"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/config"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/mssql"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_err"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_io"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/shared"
)

// Prober runs connection probes following the Assess → Intervene → Evaluate
// pattern. The opener and clock are swappable for tests.
type Prober struct {
	open     func(driverName, dsn string) (*sql.DB, error)
	now      func() time.Time
	validate *validator.Validate
}

// NewProber creates a Prober backed by the real driver and clock.
func NewProber() *Prober {
	return &Prober{
		open:     mssql.Open,
		now:      time.Now,
		validate: validator.New(),
	}
}

// Probe connects to the target, gathers identity and security diagnostics,
// and returns the populated result. The connection is closed on every path.
func (p *Prober) Probe(rc *probe_io.RuntimeContext, opts *Options) (*ConnectionProbeResult, error) {
	return p.run(rc, opts, false)
}

// ProbeQuiet collapses all outcomes to a boolean. Every error is swallowed,
// and all logging drops to debug level so quiet runs emit nothing beyond the
// boolean itself.
func (p *Prober) ProbeQuiet(rc *probe_io.RuntimeContext, opts *Options) bool {
	result, err := p.run(rc, opts, true)
	if err != nil {
		otelzap.Ctx(rc.Ctx).Debug("Quiet probe failed", zap.Error(err))
		return false
	}
	return result != nil
}

func (p *Prober) run(rc *probe_io.RuntimeContext, opts *Options, quiet bool) (*ConnectionProbeResult, error) {
	logger := otelzap.Ctx(rc.Ctx)
	progress := logger.Info
	if quiet {
		progress = logger.Debug
	}

	// ASSESS - validate options and build the connection strings
	cfg, err := p.assess(rc, opts)
	if err != nil {
		return nil, err
	}

	result := &ConnectionProbeResult{
		ConnectString: cfg.DisplayDSN(),
		TrustedAuth:   cfg.TrustedAuth(),
	}

	progress("Probing SQL Server connection",
		zap.String("connect_string", result.ConnectString),
		zap.Bool("trusted_auth", result.TrustedAuth))

	// INTERVENE - open, ping, and read session identity
	db, err := p.open(mssql.DriverName, cfg.DSN())
	if err != nil {
		return nil, cerr.Wrap(err, "open connection")
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("Failed to close connection", zap.Error(closeErr))
		}
	}()

	if err := db.PingContext(rc.Ctx); err != nil {
		return nil, probe_err.ClassifyError(err, "connect to "+opts.Host)
	}

	if err := p.intervene(rc, db, result); err != nil {
		return nil, err
	}

	// EVALUATE - best-effort security info and derived fields
	p.evaluate(rc, db, result, quiet)

	progress("Probe succeeded",
		zap.Int("session_id", result.SessionID),
		zap.String("server_name", result.ServerName),
		zap.String("sql_version", result.SQLVersion),
		zap.Duration("uptime", result.Uptime))

	return result, nil
}

// assess validates the options and derives the connection config.
func (p *Prober) assess(rc *probe_io.RuntimeContext, opts *Options) (mssql.ConnectionConfig, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if opts == nil {
		return mssql.ConnectionConfig{}, probe_err.NewValidationError("probe options are required")
	}
	if err := p.validate.Struct(opts); err != nil {
		return mssql.ConnectionConfig{}, probe_err.NewValidationError(
			"invalid probe options: "+err.Error(),
			"Provide at least --host",
		)
	}
	if opts.Password != "" && opts.Username == "" {
		return mssql.ConnectionConfig{}, probe_err.NewValidationError(
			"password given without a username",
			"Provide --username together with --password, or neither for integrated auth",
		)
	}

	database := opts.Database
	if database == "" {
		database = config.DefaultDatabase
	}
	appName := opts.AppName
	if appName == "" {
		appName = shared.AppID
	}

	logger.Debug("Probe options assessed",
		zap.String("host", opts.Host),
		zap.String("instance", opts.Instance),
		zap.String("database", database),
		zap.Bool("encrypt", opts.Encrypt))

	return mssql.ConnectionConfig{
		Host:                   opts.Host,
		Instance:               opts.Instance,
		Port:                   opts.Port,
		Database:               database,
		Username:               opts.Username,
		Password:               opts.Password,
		Encrypt:                opts.Encrypt,
		TrustServerCertificate: opts.TrustServerCertificate,
		AppName:                appName,
	}, nil
}

// intervene reads the session and instance identity. Failure here fails the
// probe: a connection that cannot answer the identity query is not healthy.
func (p *Prober) intervene(rc *probe_io.RuntimeContext, db *sql.DB, result *ConnectionProbeResult) error {
	row := db.QueryRowContext(rc.Ctx, identityQuery)
	if err := row.Scan(
		&result.SessionID,
		&result.Login,
		&result.ExecutionUser,
		&result.ServerName,
		&result.InstanceName,
		&result.SQLVersion,
		&result.Edition,
		&result.StartTime,
	); err != nil {
		return cerr.Wrap(err, "query session identity")
	}

	uptime := p.now().Sub(result.StartTime)
	if uptime < 0 {
		// Clock skew between probe host and server; report zero rather than
		// a negative uptime.
		uptime = 0
	}
	result.Uptime = uptime
	return nil
}

// evaluate fills in transport/auth/encryption from dm_exec_connections.
// The query needs VIEW SERVER STATE; failure leaves the fields empty and
// never fails the probe.
func (p *Prober) evaluate(rc *probe_io.RuntimeContext, db *sql.DB, result *ConnectionProbeResult, quiet bool) {
	logger := otelzap.Ctx(rc.Ctx)
	report := logger.Warn
	if quiet {
		report = logger.Debug
	}

	row := db.QueryRowContext(rc.Ctx, securityQuery)
	if err := row.Scan(&result.NetTransport, &result.AuthScheme, &result.Encryption); err != nil {
		report("Connection security query failed; transport and encryption unknown",
			zap.Error(err))
		result.NetTransport = ""
		result.AuthScheme = ""
		result.Encryption = ""
	}
}
