// Package lwlog holds the process-wide structured logger.
package lwlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	m      sync.RWMutex
	logger *zap.Logger
)

func init() {
	logger = newDefault(zapcore.InfoLevel)
}

// newDefault builds a logger configured with datetime, caller information,
// and splits output to stdout and stderr based on error level.
func newDefault(min zapcore.Level) *zap.Logger {
	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= min
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= min
	})
	stdoutWriter := zapcore.Lock(os.Stdout)
	stderrWriter := zapcore.Lock(os.Stderr)

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(config)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, stderrWriter, isErrorLevel),
		zapcore.NewCore(encoder, stdoutWriter, isInfoLevel),
	)
	return zap.New(core, zap.AddCaller())
}

// L returns the current logger.
func L() *zap.Logger {
	m.RLock()
	defer m.RUnlock()
	return logger
}

// S returns the current logger in its sugared form.
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// SetLogger replaces the process logger and returns a func restoring the previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	m.Lock()
	defer m.Unlock()
	prev := logger
	logger = l
	return func() {
		m.Lock()
		defer m.Unlock()
		logger = prev
	}
}

// SetLevel rebuilds the default logger at the named level ("debug", "info", "warn", "error").
func SetLevel(name string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return err
	}
	SetLogger(newDefault(lvl))
	return nil
}
