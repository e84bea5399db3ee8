// Package logging constructs the zap loggers used across aqimon.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// defaultZapLevel is the fallback when an unknown level string is provided.
const defaultZapLevel = zapcore.InfoLevel

// New builds a sugared logger at the named level writing to stderr. When
// file is non-empty, output goes there instead; the dashboard relies on this
// to keep log lines off the terminal it is drawing on. The returned function
// flushes and releases the sink.
func New(level, file string) (*Logger, func(), error) {
	sink := zapcore.Lock(os.Stderr)
	closeSink := func() {}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", file, err)
		}
		sink = zapcore.Lock(f)
		closeSink = func() { _ = f.Close() }
	}

	core := zapcore.NewCore(newConsoleEncoder(), sink, zap.NewAtomicLevelAt(toZapLevel(level)))
	logger := zap.New(core)
	cleanup := func() {
		_ = logger.Sync()
		closeSink()
	}
	return &Logger{SugaredLogger: logger.Sugar()}, cleanup, nil
}

// Nop returns a logger that discards everything, for tests.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// toZapLevel converts a textual level to zapcore.Level using known level
// constants.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

// newConsoleEncoder builds the console encoder shared by all sinks.
func newConsoleEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
