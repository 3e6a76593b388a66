// Package logging provides config-driven categorized logging for glassngold.
// Every category gets a named child of one zap base logger, so a single level,
// format and sink apply everywhere while individual categories can be muted.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config resolution
	CategoryEncoder   Category = "encoder"   // File validation and data URI encoding
	CategoryAppraisal Category = "appraisal" // Model API calls
	CategoryPortfolio Category = "portfolio" // Portfolio store mutations
	CategoryPipeline  Category = "pipeline"  // Upload orchestration
	CategoryHTTP      Category = "http"      // Web surface, access log
	CategoryWatch     Category = "watch"     // Drop-folder watcher
	CategoryUI        Category = "ui"        // Terminal UI
)

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // empty = stderr
	Categories map[string]bool // missing = enabled
}

var (
	mu       sync.RWMutex
	base     = zap.NewNop()
	loggers  = make(map[Category]*zap.Logger)
	current  Config
	disabled = zap.NewNop()
)

// New builds a zap logger from cfg without touching the registry.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = lvl
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		zc.Encoding = "json"
	case "console", "text":
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: json, console)", cfg.Format)
	}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	} else {
		zc.OutputPaths = []string{"stderr"}
		zc.ErrorOutputPaths = []string{"stderr"}
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Initialize builds the base logger and resets the category registry.
// Should be called once at startup.
func Initialize(cfg Config) (*zap.Logger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	SetBase(l)

	mu.Lock()
	current = cfg
	mu.Unlock()

	Get(CategoryBoot).Debug("logging initialized",
		zap.String("level", cfg.Level),
		zap.String("format", cfg.Format),
		zap.String("file", cfg.File))
	return l, nil
}

// SetBase replaces the base logger. Tests use it with zaptest/observer.
func SetBase(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	loggers = make(map[Category]*zap.Logger)
}

// SetCategories replaces the category filter.
func SetCategories(categories map[string]bool) {
	mu.Lock()
	defer mu.Unlock()
	current.Categories = categories
	loggers = make(map[Category]*zap.Logger)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if current.Categories == nil {
		return true
	}
	enabled, exists := current.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for the given category.
// Disabled categories get a no-op logger.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	l := disabled
	if categoryEnabledLocked(category) {
		l = base.Named(string(category))
	}
	loggers[category] = l
	return l
}

// Sync flushes the base logger. Errors from syncing stderr are ignored.
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	_ = l.Sync()
}
