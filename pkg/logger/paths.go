/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/xdg"
)

// PlatformLogPaths returns fallback log paths in order of priority for the platform.
func PlatformLogPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			xdg.XDGStatePath(shared.AppID, "sqlprobe.log"),
			"/tmp/sqlprobe/sqlprobe.log",
		}
	case "linux":
		return []string{
			"/var/log/sqlprobe/sqlprobe.log", // best if writable
			xdg.XDGStatePath(shared.AppID, "sqlprobe.log"), // e.g. ~/.local/state/sqlprobe/sqlprobe.log
			"/tmp/sqlprobe/sqlprobe.log",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramData"), shared.AppID, "sqlprobe.log"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), shared.AppID, "sqlprobe.log"),
			".\\sqlprobe.log",
		}
	default:
		return []string{"./sqlprobe.log"}
	}
}

// ResolveLogPath attempts to find the best writable log file path.
func ResolveLogPath() string {
	for _, path := range PlatformLogPaths() {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			continue
		}
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err == nil {
			_ = file.Close()
			return path
		}
	}
	return ""
}
