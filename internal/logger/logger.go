package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Environment variables configuring the log destination and verbosity.
const (
	envLogPath  = "KVCACHE_LOG"
	envLogLevel = "KVCACHE_LOG_LEVEL"
)

// stdf backs the printf helpers, which sit one frame above the caller.
var (
	std           log.Logger = log.NewNopLogger()
	stdf          log.Logger = log.NewNopLogger()
	logFile       *os.File
	isInitialized bool
)

// New builds a logfmt logger writing to w, filtered at lvl.
func New(w io.Writer, lvl string) log.Logger {
	return newLogger(w, lvl, log.DefaultCaller)
}

func newLogger(w io.Writer, lvl string, caller log.Valuer) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = level.NewFilter(l, allow(lvl))
	return log.With(l, "ts", log.DefaultTimestampUTC, "caller", caller)
}

func allow(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// InitFromEnv initializes the logger using KVCACHE_LOG and KVCACHE_LOG_LEVEL.
// An empty path or "-" logs to stderr.
func InitFromEnv() error {
	return Init(os.Getenv(envLogPath), os.Getenv(envLogLevel))
}

// Init initializes the logger to write to the provided file path.
// It creates parent directories if needed and opens the file in append mode.
func Init(path, lvl string) error {
	if isInitialized {
		return nil
	}
	var w io.Writer = os.Stderr
	if path != "" && path != "-" {
		if err := ensureParentDir(path); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = f
		w = f
	}
	std = New(w, lvl)
	stdf = newLogger(w, lvl, log.Caller(4))
	isInitialized = true
	return nil
}

// Logger returns the process logger for injection into components.
func Logger() log.Logger { return std }

// Close closes the underlying log file, if open.
func Close() error {
	std = log.NewNopLogger()
	stdf = log.NewNopLogger()
	isInitialized = false
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// Infof logs informational messages.
func Infof(format string, args ...any) { _ = level.Info(stdf).Log("msg", fmt.Sprintf(format, args...)) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { _ = level.Warn(stdf).Log("msg", fmt.Sprintf(format, args...)) }

// Errorf logs errors.
func Errorf(format string, args ...any) { _ = level.Error(stdf).Log("msg", fmt.Sprintf(format, args...)) }

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
