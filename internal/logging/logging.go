// Package logging configures slog for the toolkit. Diagnostics go to
// stderr so stdout stays free for command output and piped data.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// defaultLogger backs the package-level helpers.
var defaultLogger *slog.Logger

func init() {
	// Quiet text logging until the CLI configures otherwise.
	InitLogger(LevelWarn, FormatText)
}

// Level is the minimum severity that gets emitted.
type Level int

const (
	// LevelDebug emits everything, including per-file parse reports.
	LevelDebug Level = iota
	// LevelInfo emits conversion and bundle summaries.
	LevelInfo
	// LevelWarn is the CLI default.
	LevelWarn
	// LevelError emits failures only.
	LevelError
)

// Format selects the handler used for log records.
type Format int

const (
	// FormatText writes key=value lines for terminals.
	FormatText Format = iota
	// FormatJSON writes one JSON object per record.
	FormatJSON
)

// LevelFromString maps a flag value to a Level.
func LevelFromString(s string) (Level, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, errors.NewStructuref("parse log level", "unknown level %q", s)
}

// FormatFromString maps a flag value to a Format.
func FormatFromString(s string) (Format, error) {
	switch s {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, errors.NewStructuref("parse log format", "unknown format %q", s)
}

// InitLogger initializes the global logger with the specified level and
// format. Logs go to stderr; stdout is reserved for command output.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// RFC3339 timestamps instead of slog's default.
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the configured logger for callers that need to
// attach their own groups or attributes.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// Debug logs at debug level with key-value attributes.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs at info level with key-value attributes.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs at warn level with key-value attributes.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs at error level with key-value attributes.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// ParseReport logs the outcome of parsing an annotation file.
func ParseReport(path, variant string, tiers int, duration time.Duration, args ...any) {
	allArgs := []any{
		"path", path,
		"variant", variant,
		"tiers", tiers,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("parse", allArgs...)
}

// ConvertReport logs a completed conversion.
func ConvertReport(input, output, format string, args ...any) {
	allArgs := []any{
		"input", input,
		"output", output,
		"format", format,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("convert", allArgs...)
}

// StoreEvent logs a corpus store operation.
func StoreEvent(op, path string, args ...any) {
	allArgs := []any{
		"op", op,
		"path", path,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("store", allArgs...)
}

// BundleEvent logs a bundle operation.
func BundleEvent(op, path string, files int, args ...any) {
	allArgs := []any{
		"op", op,
		"path", path,
		"files", files,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("bundle", allArgs...)
}
