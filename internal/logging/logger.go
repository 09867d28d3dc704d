// Package logging builds the zap loggers used across hornkb. Each subsystem
// logs through a named child logger for its category, and categories can be
// switched off individually from configuration.
package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hornkb/internal/config"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryParse    Category = "parse"    // Source lexing and parsing
	CategoryDecode   Category = "decode"   // Tree-walking decoder
	CategoryAssemble Category = "assemble" // Program assembly
	CategoryEngine   Category = "engine"   // Mangle evaluation
	CategoryWatch    Category = "watch"    // Source directory watcher
	CategoryBatch    Category = "batch"    // Concurrent compilation
	CategoryCLI      Category = "cli"      // Command line
)

// Categories lists every known category.
var Categories = []Category{
	CategoryParse, CategoryDecode, CategoryAssemble,
	CategoryEngine, CategoryWatch, CategoryBatch, CategoryCLI,
}

// New builds the root logger. The json format uses zap's production encoder,
// text uses the development console encoder. DebugMode forces debug level.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "text", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	if cfg.DebugMode {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// For returns the child logger of a category, or a no-op logger when the
// category is switched off.
func For(base *zap.Logger, cfg config.LoggingConfig, category Category) *zap.Logger {
	if base == nil || !cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return base.Named(string(category))
}

// Timer measures an operation's duration.
type Timer struct {
	logger *zap.Logger
	op     string
	start  time.Time
}

// StartTimer begins timing an operation.
func StartTimer(logger *zap.Logger, operation string) *Timer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Timer{logger: logger, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.logger.Warn("operation slow",
			zap.String("op", t.op),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
	} else {
		t.logger.Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
