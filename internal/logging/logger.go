// Package logging holds the process-wide zap logger and helpers that keep
// logged values short and free of secrets.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu            sync.RWMutex
	defaultLogger *zap.Logger
)

// InitLogger initializes the default logger
func InitLogger() error {
	config := zap.NewProductionConfig()

	// Set log level based on environment
	if os.Getenv("LOG_LEVEL") == "debug" {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := config.Build()
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger replaces the default logger, e.g. with zaptest or zap.NewNop in tests
func SetLogger(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
	zap.ReplaceGlobals(logger)
}

// Logger returns the default logger instance
func Logger() *zap.Logger {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()
	if logger != nil {
		return logger
	}

	// Fallback to basic logger if not initialized
	logger, err := zap.NewProduction()
	if err != nil {
		// If all else fails, use Nop logger to prevent nil pointer
		logger = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = logger
	}
	return defaultLogger
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()
	if logger != nil {
		if err := logger.Sync(); err != nil {
			// Sync errors are often safe to ignore (e.g., /dev/stderr on Linux)
			logger.Debug("failed to sync logger", zap.Error(err))
			return err
		}
	}
	return nil
}
