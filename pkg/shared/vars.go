// pkg/shared/vars.go

package shared

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// AppID names the tool in filesystem paths (logs, state, config).
const AppID = "sqlprobe"

// Version is stamped at build time via -ldflags.
var Version = "dev"

var syncedAlready atomic.Bool

// SafeSync flushes the global logger once per process exit. Sync on stdout
// returns EINVAL on some platforms; that is not worth surfacing.
func SafeSync() {
	if syncedAlready.Swap(true) {
		return
	}
	_ = zap.L().Sync()
}
