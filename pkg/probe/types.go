// pkg/probe/types.go

package probe

import (
	"encoding/json"
	"time"
)

// Options describes one connection probe request.
type Options struct {
	Host                   string `json:"host" validate:"required"`
	Instance               string `json:"instance,omitempty"`
	Port                   int    `json:"port,omitempty" validate:"min=0,max=65535"`
	Database               string `json:"database,omitempty"`
	Username               string `json:"username,omitempty"`
	Password               string `json:"-"`
	Encrypt                bool   `json:"encrypt,omitempty"`
	TrustServerCertificate bool   `json:"trust_server_certificate,omitempty"`
	AppName                string `json:"app_name,omitempty"`
}

// ConnectionProbeResult is the diagnostic record for one successful probe.
// The connect string is always the redacted form. Transport, auth scheme and
// encryption come from a best-effort query and may be empty. Immutable once
// returned.
type ConnectionProbeResult struct {
	ConnectString string        `json:"connect_string"`
	TrustedAuth   bool          `json:"trusted_auth"`
	SessionID     int           `json:"session_id"`
	Login         string        `json:"login"`
	ExecutionUser string        `json:"execution_user"`
	NetTransport  string        `json:"net_transport,omitempty"`
	AuthScheme    string        `json:"auth_scheme,omitempty"`
	Encryption    string        `json:"encryption,omitempty"`
	ServerName    string        `json:"server_name"`
	InstanceName  string        `json:"instance_name"`
	SQLVersion    string        `json:"sql_version"`
	Edition       string        `json:"edition"`
	StartTime     time.Time     `json:"start_time"`
	Uptime        time.Duration `json:"uptime"`
}

// MarshalJSON renders uptime as a duration string like "72h3m10s" instead of
// time.Duration's raw nanosecond count.
func (r *ConnectionProbeResult) MarshalJSON() ([]byte, error) {
	type alias ConnectionProbeResult
	return json.Marshal(&struct {
		*alias
		Uptime string `json:"uptime"`
	}{
		alias:  (*alias)(r),
		Uptime: r.Uptime.Round(time.Second).String(),
	})
}
