// pkg/config/config.go

package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_cli"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/xdg"
)

// Keys recognized in config files, SQLPROBE_* env vars, and flags.
const (
	KeyHost     = "host"
	KeyUsername = "username"
	KeyPassword = "password"
	KeyDatabase = "database"
	KeyAppName  = "app-name"
	KeyEncrypt  = "encrypt"
)

// DefaultDatabase is the catalog probed when none is given. master is the
// system default catalog every SQL Server login can reach.
const DefaultDatabase = "master"

// New returns a Viper instance configured for sqlprobe: .env loading, the
// SQLPROBE_ env prefix, an optional YAML config file, and defaults.
func New(log *zap.Logger) *viper.Viper {
	// A .env in the working directory is a developer convenience; absence is
	// the normal case.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debug("No .env file loaded", zap.Error(err))
	}

	v := viper.New()
	probe_cli.SetViperEnvPrefix(v, "SQLPROBE")

	v.SetDefault(KeyDatabase, DefaultDatabase)
	v.SetDefault(KeyAppName, shared.AppID)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Dir(xdg.XDGConfigPath(shared.AppID, "config.yaml")))
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Failed to read config file", zap.Error(err))
		}
	} else {
		log.Debug("Config file loaded", zap.String("path", v.ConfigFileUsed()))
	}

	return v
}
