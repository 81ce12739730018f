package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level name.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SlogLevel maps the level onto log/slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" into a LogLevel.
// Unknown names fall back to LevelWarn, the quiet default of the CLI.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

var defaultLogger *slog.Logger

// InitForCLI sends text records at or above filterLevel to output, stderr
// when output is nil. The lobby clients log through it once a command runs.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: filterLevel.SlogLevel(),
	})
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// Logger returns a key/value logger tagged with subsystem. The cookie store
// writes its SECURITY_AUDIT records through it.
func Logger(subsystem string) *slog.Logger {
	base := defaultLogger
	if base == nil {
		base = slog.Default()
	}
	return base.With(slog.String("subsystem", subsystem))
}

func logf(level LogLevel, subsystem string, err error, messageFmt string, args ...any) {
	if defaultLogger == nil || !defaultLogger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	defaultLogger.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// Debug logs request and state details useful when tracing a flow.
func Debug(subsystem string, messageFmt string, args ...any) {
	logf(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs a completed operation.
func Info(subsystem string, messageFmt string, args ...any) {
	logf(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a degraded result, such as a soft-failed read.
func Warn(subsystem string, messageFmt string, args ...any) {
	logf(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs a failed operation with its cause.
func Error(subsystem string, err error, messageFmt string, args ...any) {
	logf(LevelError, subsystem, err, messageFmt, args...)
}

// Since formats the time elapsed since start for request timing lines.
func Since(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
