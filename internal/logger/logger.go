package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Init installs the process-wide JSON logger. Until Init is called every
// helper in this package is a no-op, which keeps tests quiet.
func Init(debug bool) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}

	Set(l)
	Info("logger initialized", nil)
}

// Set replaces the underlying logger.
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// L returns the underlying zap logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Sync() {
	_ = L().Sync()
}

func Debug(msg string, fields map[string]any) {
	L().Debug(msg, toZap(fields)...)
}

func Info(msg string, fields map[string]any) {
	L().Info(msg, toZap(fields)...)
}

func Warn(msg string, fields map[string]any) {
	L().Warn(msg, toZap(fields)...)
}

func Error(msg string, fields map[string]any) {
	L().Error(msg, toZap(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	L().Error(msg, toZap(fields)...)
	Sync()
	os.Exit(1)
}

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
