package logger

import (
	"log/slog"
	"os"
	"strings"
)

var (
	// Logger is the global slog logger instance
	Logger *slog.Logger
)

// Init initializes the global logger. The level comes from the LOG_LEVEL
// environment variable (default info); LOG_FORMAT=text switches the JSON
// handler to a human-readable one for local development.
func Init() {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}

	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("Logger initialized", "level", levelStr)
}

// log returns the initialized logger, or the slog default when Init has not
// run (library use, tests).
func log() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	log().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	log().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	log().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	log().Error(msg, args...)
}
