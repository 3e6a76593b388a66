package config

import (
	"strings"
	"time"
)

// ServerConfig configures the web surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Mount point, e.g. "/glassngold/" when deployed under a shared host.
	BasePath       string   `yaml:"base_path"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	DevMode        bool     `yaml:"dev_mode"`
}

// NormalizedBasePath returns BasePath with a leading slash and no trailing
// slash, or "" for the root mount.
func (s ServerConfig) NormalizedBasePath() string {
	p := strings.TrimSpace(s.BasePath)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

// WatchConfig configures the drop-folder watcher.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	Debounce string `yaml:"debounce"`
}

// GetDebounce returns the debounce window as a duration.
func (w WatchConfig) GetDebounce() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// UIConfig configures terminal rendering.
type UIConfig struct {
	Theme string `yaml:"theme"` // dark, light
	Width int    `yaml:"width"`
}
