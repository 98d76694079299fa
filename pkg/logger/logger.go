// Package logger is the process-wide logger used by brightchat binaries.
//
// It keeps a printf-style surface so call sites read like
// logger.Warn("[StreamRunner] drop malformed frame: %v", err), and routes
// everything through a single logrus instance.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	std     = newLogger()
	logFile *os.File
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// InitLog tees log output into the file at path, creating parent directories as needed.
func InitLog(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	std.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// FlushLog syncs and closes the log file opened by InitLog, if any.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	_ = logFile.Sync()
	_ = logFile.Close()
	logFile = nil
	std.SetOutput(os.Stderr)
}

// SetLevel parses level ("debug", "info", "warn", "error") and applies it.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	std.SetLevel(lvl)
	return nil
}

// SetOutput redirects log output. Tests use it to silence or capture logs.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// IsDebug reports whether debug logging is enabled.
func IsDebug() bool {
	return std.IsLevelEnabled(logrus.DebugLevel)
}

func Debug(format string, args ...any) { std.Debugf(format, args...) }
func Info(format string, args ...any)  { std.Infof(format, args...) }
func Warn(format string, args ...any)  { std.Warnf(format, args...) }
func Error(format string, args ...any) { std.Errorf(format, args...) }

// DebugX logs with a module field attached.
func DebugX(module, format string, args ...any) {
	std.WithField("module", module).Debugf(format, args...)
}

// InfoX logs with a module field attached.
func InfoX(module, format string, args ...any) {
	std.WithField("module", module).Infof(format, args...)
}

// WarnX logs with a module field attached.
func WarnX(module, format string, args ...any) {
	std.WithField("module", module).Warnf(format, args...)
}

// ErrorX logs with a module field attached.
func ErrorX(module, format string, args ...any) {
	std.WithField("module", module).Errorf(format, args...)
}
