package probe

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_err"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_io"
)

var (
	testStart = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	testNow   = testStart.Add(72 * time.Hour)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.MonitorPingsOption(true),
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
	)
	require.NoError(t, err)
	return db, mock
}

func newTestProber(db *sql.DB) *Prober {
	return &Prober{
		open:     func(driverName, dsn string) (*sql.DB, error) { return db, nil },
		now:      func() time.Time { return testNow },
		validate: validator.New(),
	}
}

func testRC(t *testing.T) *probe_io.RuntimeContext {
	t.Helper()
	return probe_io.NewContext(context.Background(), "test")
}

func identityRows(start time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"session_id", "login", "execution_user", "server_name",
		"instance_name", "product_version", "edition", "start_time",
	}).AddRow(51, "CORP\\svc-probe", "dbo", "SQL01", "MSSQLSERVER",
		"15.0.4123.1", "Developer Edition (64-bit)", start)
}

func securityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"net_transport", "auth_scheme", "encrypt_option"}).
		AddRow("TCP", "NTLM", "TRUE")
}

func TestProbeSuccess(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(identityQuery).WillReturnRows(identityRows(testStart))
	mock.ExpectQuery(securityQuery).WillReturnRows(securityRows())
	mock.ExpectClose()

	p := newTestProber(db)
	result, err := p.Probe(testRC(t), &Options{Host: "sql01"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.TrustedAuth)
	assert.Equal(t, 51, result.SessionID)
	assert.Equal(t, "CORP\\svc-probe", result.Login)
	assert.Equal(t, "dbo", result.ExecutionUser)
	assert.Equal(t, "SQL01", result.ServerName)
	assert.Equal(t, "MSSQLSERVER", result.InstanceName)
	assert.Equal(t, "15.0.4123.1", result.SQLVersion)
	assert.Equal(t, "Developer Edition (64-bit)", result.Edition)
	assert.Equal(t, "TCP", result.NetTransport)
	assert.Equal(t, "NTLM", result.AuthScheme)
	assert.Equal(t, "TRUE", result.Encryption)
	assert.Equal(t, testStart, result.StartTime)
	assert.Equal(t, 72*time.Hour, result.Uptime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeSecurityQueryBestEffort(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(identityQuery).WillReturnRows(identityRows(testStart))
	mock.ExpectQuery(securityQuery).
		WillReturnError(cerr.New("VIEW SERVER STATE permission was denied"))
	mock.ExpectClose()

	p := newTestProber(db)
	result, err := p.Probe(testRC(t), &Options{Host: "sql01"})
	require.NoError(t, err)

	// The probe still succeeds; only the security fields stay empty.
	assert.Equal(t, "SQL01", result.ServerName)
	assert.Empty(t, result.NetTransport)
	assert.Empty(t, result.AuthScheme)
	assert.Empty(t, result.Encryption)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbePingFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing().WillReturnError(cerr.New("Login failed for user 'probe'"))
	mock.ExpectClose()

	p := newTestProber(db)
	result, err := p.Probe(testRC(t), &Options{Host: "sql01", Username: "probe", Password: "x"})
	require.Error(t, err)
	assert.Nil(t, result)

	var classified *probe_err.ClassifiedError
	require.True(t, cerr.As(err, &classified))
	assert.Equal(t, probe_err.CategoryAuth, classified.Category)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeIdentityQueryFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(identityQuery).WillReturnError(cerr.New("connection reset"))
	mock.ExpectClose()

	p := newTestProber(db)
	_, err := p.Probe(testRC(t), &Options{Host: "sql01"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query session identity")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeUptimeNeverNegative(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	// Server clock ahead of ours: start time in our future.
	mock.ExpectQuery(identityQuery).WillReturnRows(identityRows(testNow.Add(10 * time.Minute)))
	mock.ExpectQuery(securityQuery).WillReturnRows(securityRows())
	mock.ExpectClose()

	p := newTestProber(db)
	result, err := p.Probe(testRC(t), &Options{Host: "sql01"})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), result.Uptime)
}

func TestProbeValidation(t *testing.T) {
	openCalled := false
	p := &Prober{
		open: func(driverName, dsn string) (*sql.DB, error) {
			openCalled = true
			return nil, cerr.New("must not be reached")
		},
		now:      func() time.Time { return testNow },
		validate: validator.New(),
	}

	tests := []struct {
		name string
		opts *Options
	}{
		{"nil options", nil},
		{"missing host", &Options{}},
		{"password without username", &Options{Host: "sql01", Password: "s3cret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Probe(testRC(t), tt.opts)
			require.Error(t, err)
			assert.Nil(t, result)

			var classified *probe_err.ClassifiedError
			require.True(t, cerr.As(err, &classified))
			assert.Equal(t, probe_err.CategoryValidation, classified.Category)
			assert.False(t, openCalled)
		})
	}
}

func TestProbeConnectStringMasksPassword(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(identityQuery).WillReturnRows(identityRows(testStart))
	mock.ExpectQuery(securityQuery).WillReturnRows(securityRows())
	mock.ExpectClose()

	var openedDSN string
	p := newTestProber(db)
	p.open = func(driverName, dsn string) (*sql.DB, error) {
		openedDSN = dsn
		return db, nil
	}

	result, err := p.Probe(testRC(t), &Options{
		Host:     "sql01",
		Username: "probe",
		Password: "s3cret",
	})
	require.NoError(t, err)

	assert.False(t, result.TrustedAuth)
	assert.Contains(t, openedDSN, "s3cret")
	assert.NotContains(t, result.ConnectString, "s3cret")
	assert.Contains(t, result.ConnectString, "********")
}

func TestProbeQuiet(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectPing()
		mock.ExpectQuery(identityQuery).WillReturnRows(identityRows(testStart))
		mock.ExpectQuery(securityQuery).WillReturnRows(securityRows())
		mock.ExpectClose()

		p := newTestProber(db)
		assert.True(t, p.ProbeQuiet(testRC(t), &Options{Host: "sql01"}))
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectPing().WillReturnError(cerr.New("unable to open tcp connection"))
		mock.ExpectClose()

		p := newTestProber(db)
		assert.False(t, p.ProbeQuiet(testRC(t), &Options{Host: "sql01"}))
	})

	t.Run("invalid options", func(t *testing.T) {
		p := newTestProber(nil)
		assert.False(t, p.ProbeQuiet(testRC(t), &Options{}))
	})
}

func TestProbeQuietLogsAtDebugOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	undo := otelzap.ReplaceGlobals(otelzap.New(zap.New(core)))
	defer undo()

	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(identityQuery).WillReturnRows(identityRows(testStart))
	mock.ExpectQuery(securityQuery).
		WillReturnError(cerr.New("VIEW SERVER STATE permission was denied"))
	mock.ExpectClose()

	p := newTestProber(db)
	assert.True(t, p.ProbeQuiet(testRC(t), &Options{Host: "sql01"}))

	seen := 0
	for _, entry := range logs.All() {
		switch entry.Message {
		case "Probing SQL Server connection", "Probe succeeded",
			"Connection security query failed; transport and encryption unknown":
			seen++
			assert.Equal(t, zapcore.DebugLevel, entry.Level,
				"quiet probe logged %q above debug", entry.Message)
		}
	}
	assert.Equal(t, 3, seen)
}

func TestResultJSONUptimeHumanReadable(t *testing.T) {
	t.Parallel()

	result := &ConnectionProbeResult{
		ServerName: "SQL01",
		Uptime:     72*time.Hour + 3*time.Minute + 10*time.Second,
	}

	out, err := json.Marshal(result)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"uptime":"72h3m10s"`)
	assert.NotContains(t, string(out), "259390000000000")
}

func TestProbeDefaultsDatabaseAndAppName(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()
	mock.ExpectQuery(identityQuery).WillReturnRows(identityRows(testStart))
	mock.ExpectQuery(securityQuery).WillReturnRows(securityRows())
	mock.ExpectClose()

	p := newTestProber(db)
	result, err := p.Probe(testRC(t), &Options{Host: "sql01"})
	require.NoError(t, err)

	assert.Contains(t, result.ConnectString, "database=master")
	assert.Contains(t, result.ConnectString, "app+name=sqlprobe")
}
