// Package mssql builds SQL Server connection strings and opens connections
// through the microsoft/go-mssqldb driver. It never implements any of the
// TDS protocol itself.
package mssql

import (
	"net/url"
	"strconv"
	"strings"
)

// DriverName is the database/sql driver registered by go-mssqldb.
const DriverName = "sqlserver"

// PasswordMask replaces the password in any connection string meant for
// logs or user-facing output.
const PasswordMask = "********"

// ConnectionConfig holds everything needed to reach one SQL Server instance.
// Username empty means integrated/trusted authentication: the connection
// string carries no credential at all and the driver uses the caller's
// security context.
type ConnectionConfig struct {
	Host                   string
	Instance               string
	Port                   int
	Database               string
	Username               string
	Password               string
	Encrypt                bool
	TrustServerCertificate bool
	AppName                string
}

// SplitHost breaks a user-supplied target into host, instance, and port.
// Accepted forms: "host", "host\instance", "host:1433", "host\instance:1433".
func SplitHost(target string) (host, instance string, port int) {
	host = target
	if i := strings.LastIndex(host, ":"); i >= 0 {
		if p, err := strconv.Atoi(host[i+1:]); err == nil {
			port = p
			host = host[:i]
		}
	}
	if i := strings.Index(host, `\`); i >= 0 {
		instance = host[i+1:]
		host = host[:i]
	}
	return host, instance, port
}

// DSN returns the real connection string, password included. Never log this;
// use DisplayDSN for anything user-visible.
func (c ConnectionConfig) DSN() string {
	return c.build(c.Password)
}

// DisplayDSN returns the connection string with the password masked. With
// integrated auth the two strings are identical: neither carries a password.
func (c ConnectionConfig) DisplayDSN() string {
	if c.Password == "" {
		return c.build("")
	}
	return c.build(PasswordMask)
}

// TrustedAuth reports whether the config uses integrated authentication.
func (c ConnectionConfig) TrustedAuth() bool {
	return c.Username == ""
}

func (c ConnectionConfig) build(password string) string {
	q := url.Values{}
	if c.Database != "" {
		q.Set("database", c.Database)
	}
	if c.AppName != "" {
		q.Set("app name", c.AppName)
	}
	if c.Encrypt {
		q.Set("encrypt", "true")
	}
	if c.TrustServerCertificate {
		q.Set("trustservercertificate", "true")
	}

	host := c.Host
	if c.Port > 0 {
		host = c.Host + ":" + strconv.Itoa(c.Port)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: q.Encode(),
	}
	if c.Instance != "" {
		u.Path = c.Instance
	}
	if c.Username != "" {
		if password != "" {
			u.User = url.UserPassword(c.Username, password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	return u.String()
}
