package mssql

import (
	"database/sql"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver
)

// Open prepares a database handle for the given DSN. No connection is made
// until the handle is used; callers ping to verify reachability.
func Open(driverName, dsn string) (*sql.DB, error) {
	return sql.Open(driverName, dsn)
}
