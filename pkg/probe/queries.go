// pkg/probe/queries.go

package probe

// identityQuery collects session and instance identity in one round trip.
// InstanceName is NULL for a default instance; COALESCE keeps the scan simple.
const identityQuery = `SELECT
	CAST(@@SPID AS int),
	SUSER_SNAME(),
	USER_NAME(),
	@@SERVERNAME,
	COALESCE(CAST(SERVERPROPERTY('InstanceName') AS nvarchar(128)), 'MSSQLSERVER'),
	CAST(SERVERPROPERTY('ProductVersion') AS nvarchar(128)),
	CAST(SERVERPROPERTY('Edition') AS nvarchar(128)),
	sqlserver_start_time
FROM sys.dm_os_sys_info`

// securityQuery reads transport, auth scheme and encryption for our own
// connection. Requires VIEW SERVER STATE, which not every login has, so the
// caller treats failure as non-fatal.
const securityQuery = `SELECT
	net_transport,
	auth_scheme,
	encrypt_option
FROM sys.dm_exec_connections
WHERE session_id = @@SPID`
