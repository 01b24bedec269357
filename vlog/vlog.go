// Package vlog holds the process-wide structured logger, built the
// same way the teacher's top-level Log() accessor is: a console-encoded
// zap.Logger configured once, named per component by callers.
package vlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLogSink = os.Stderr

var (
	mu      sync.RWMutex
	logger  *zap.Logger
	initErr error
)

func init() {
	logger, initErr = newDefault(zapcore.InfoLevel)
}

func newDefault(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(zapcore.AddSync(zapLogSink)),
		level,
	)
	return zap.New(core), nil
}

// SetLevel rebuilds the default logger at the given level. Called once
// from the CLI after parsing the configured log_level.
func SetLevel(level zapcore.Level) error {
	mu.Lock()
	defer mu.Unlock()
	l, err := newDefault(level)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// L returns the current process-wide logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Named returns a sub-logger scoped to the given component name, e.g.
// vlog.Named("listener.tcp") or vlog.Named("tlsdispatch").
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// ParseLevel maps the YAML log_level string to a zapcore.Level.
func ParseLevel(s string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, err
	}
	return level, nil
}
