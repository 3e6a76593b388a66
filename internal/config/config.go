package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "glassngold.yaml"

// ErrMissingAPIKey is returned by Validate when no credential is configured.
var ErrMissingAPIKey = errors.New("Gemini API key not configured (set API_KEY or GEMINI_API_KEY, or appraisal.api_key)")

// Config holds all glassngold configuration.
type Config struct {
	Name string `yaml:"name"`

	// Model endpoint
	Appraisal AppraisalConfig `yaml:"appraisal"`

	// Web surface
	Server ServerConfig `yaml:"server"`

	// Drop-folder watcher
	Watch WatchConfig `yaml:"watch"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "GLA$$ & GOLD",

		Appraisal: AppraisalConfig{
			Backend: BackendSDK,
			Model:   "gemini-3-flash-preview",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},

		Server: ServerConfig{
			Addr:           ":8080",
			BasePath:       "/",
			MaxUploadBytes: 20 << 20,
			AllowedOrigins: []string{"*"},
		},

		Watch: WatchConfig{
			Enabled:  false,
			Dir:      "drop",
			Debounce: "500ms",
		},

		UI: UIConfig{
			Theme: "dark",
			Width: 80,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file. The API key is never written.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	out.Appraisal.APIKey = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	// API_KEY is the name the original build injected; GEMINI_API_KEY wins.
	if key := os.Getenv("API_KEY"); key != "" {
		c.Appraisal.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Appraisal.APIKey = key
	}
	if v := os.Getenv("GLASSNGOLD_BACKEND"); v != "" {
		c.Appraisal.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("GLASSNGOLD_MODEL"); v != "" {
		c.Appraisal.Model = v
	}
	if v := os.Getenv("GLASSNGOLD_BASE_URL"); v != "" {
		c.Appraisal.BaseURL = v
	}

	if v := os.Getenv("GLASSNGOLD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GLASSNGOLD_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}

	if v := os.Getenv("GLASSNGOLD_WATCH_DIR"); v != "" {
		c.Watch.Dir = v
		c.Watch.Enabled = true
	}

	if v := os.Getenv("GLASSNGOLD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Appraisal.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if err := c.ValidateLocal(); err != nil {
		return err
	}
	return nil
}

// ValidateLocal validates everything except the credential. Commands that
// never reach the model (portfolio listing) use it.
func (c *Config) ValidateLocal() error {
	validBackend := false
	for _, b := range ValidBackends {
		if c.Appraisal.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid appraisal backend: %s (valid: %v)", c.Appraisal.Backend, ValidBackends)
	}
	if _, err := c.Appraisal.parseTimeout(); err != nil {
		return fmt.Errorf("invalid appraisal timeout %q: %w", c.Appraisal.Timeout, err)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if strings.ContainsAny(c.Server.BasePath, "?#") {
		return fmt.Errorf("server.base_path must be a plain path: %q", c.Server.BasePath)
	}
	if c.Watch.Enabled && strings.TrimSpace(c.Watch.Dir) == "" {
		return fmt.Errorf("watch.dir is required when watch is enabled")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console", "text":
	default:
		return fmt.Errorf("invalid logging format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}
