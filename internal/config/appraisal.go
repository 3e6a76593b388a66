package config

import (
	"strings"
	"time"
)

// Appraisal backends.
const (
	BackendSDK  = "sdk"  // google.golang.org/genai
	BackendREST = "rest" // direct generateContent calls
)

// ValidBackends lists all supported appraisal backends.
var ValidBackends = []string{BackendSDK, BackendREST}

// AppraisalConfig configures the model endpoint.
type AppraisalConfig struct {
	Backend string `yaml:"backend"` // sdk, rest
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	// Empty means no explicit timeout; the transport default applies.
	Timeout string `yaml:"timeout,omitempty"`
}

func (a AppraisalConfig) parseTimeout() (time.Duration, error) {
	if strings.TrimSpace(a.Timeout) == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}

// GetTimeout returns the request timeout, zero when none is configured.
func (a AppraisalConfig) GetTimeout() time.Duration {
	d, err := a.parseTimeout()
	if err != nil {
		return 0
	}
	return d
}
