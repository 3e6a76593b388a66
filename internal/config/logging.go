package config

import "glassngold/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, console
	File       string          `yaml:"file"`       // empty = stderr
	Categories map[string]bool `yaml:"categories"` // per-category toggles
}

// ToLogging converts to the logging package's config.
func (c LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		Categories: c.Categories,
	}
}
