package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Initialize builds the full logger: human-readable console output plus a
// JSON file sink when a writable log path exists. Falls back to console-only.
func Initialize() {
	path := ResolveLogPath()
	if path == "" {
		fmt.Fprintln(os.Stderr, "⚠️  No writable log path found. Logging to console only.")
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
		return
	}

	consoleCfg := DefaultConsoleEncoderConfig()
	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	writer, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  Could not write to log file, falling back to stdout:", err)
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
		return
	}

	level := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(writer), level),
	)

	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	zap.ReplaceGlobals(log)
	log.Debug("Logger initialized",
		zap.String("log_level", os.Getenv("LOG_LEVEL")),
		zap.String("log_path", path),
	)
}

// InitFallback initializes a console-only logger if none is set yet. Safe to
// call from command wrappers that may run before main's Initialize.
func InitFallback() {
	if log != nil {
		return
	}
	log = NewFallbackLogger()
	zap.ReplaceGlobals(log)
}

// GetLogger returns the package logger, initializing a fallback if needed.
func GetLogger() *zap.Logger {
	if log == nil {
		InitFallback()
	}
	return log
}

// L is shorthand for GetLogger.
func L() *zap.Logger {
	return GetLogger()
}

// Sync flushes buffered log entries.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}

// ParseLogLevel maps LOG_LEVEL strings to zap levels. Unknown values mean Info.
func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	case "DPANIC":
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}
