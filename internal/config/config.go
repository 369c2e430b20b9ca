// Package config loads mtgc settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mtgcollections/internal/logging"
	"mtgcollections/internal/lookup"
	"mtgcollections/internal/perception"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "mtgc.yaml"

// Config holds all mtgc configuration.
type Config struct {
	Vision  VisionConfig   `yaml:"vision"`
	Lookup  LookupConfig   `yaml:"lookup"`
	Output  OutputConfig   `yaml:"output"`
	Logging logging.Config `yaml:"logging"`
}

// VisionConfig configures the card extraction model.
type VisionConfig struct {
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	MinInterval string `yaml:"min_interval"` // "0" disables pacing
}

// LookupConfig configures the card name lookup service.
type LookupConfig struct {
	BaseURL     string `yaml:"base_url"`
	UserAgent   string `yaml:"user_agent"`
	MinInterval string `yaml:"min_interval"`
	Timeout     string `yaml:"timeout"`
}

// OutputConfig configures where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

const (
	defaultLookupInterval = 100 * time.Millisecond
	defaultVisionInterval = 0
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Vision: VisionConfig{
			Model:       perception.DefaultVisionModel,
			MinInterval: "0s",
		},
		Lookup: LookupConfig{
			BaseURL:     lookup.DefaultBaseURL,
			UserAgent:   lookup.DefaultUserAgent,
			MinInterval: defaultLookupInterval.String(),
			Timeout:     lookup.DefaultTimeout.String(),
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// replacing variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file. The API key is never written.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	out := *c
	out.Vision.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Vision.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Vision.Model = model
	}
	if u := os.Getenv("SCRYFALL_BASE_URL"); u != "" {
		c.Lookup.BaseURL = u
	}
	if dir := os.Getenv("MTGC_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// GetVisionInterval returns the minimum spacing between vision requests.
func (c *Config) GetVisionInterval() time.Duration {
	return parseDuration(c.Vision.MinInterval, defaultVisionInterval)
}

// GetLookupInterval returns the minimum spacing between lookups.
func (c *Config) GetLookupInterval() time.Duration {
	return parseDuration(c.Lookup.MinInterval, defaultLookupInterval)
}

// GetLookupTimeout returns the per-request lookup timeout.
func (c *Config) GetLookupTimeout() time.Duration {
	d := parseDuration(c.Lookup.Timeout, lookup.DefaultTimeout)
	if d == 0 {
		return lookup.DefaultTimeout
	}
	return d
}

// GetOutputDir returns the artifact directory, defaulting to the working
// directory.
func (c *Config) GetOutputDir() string {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return "."
	}
	return c.Output.Dir
}

// Validate validates the settings every command depends on.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Lookup.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid lookup base_url %q: %w", c.Lookup.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid lookup base_url %q: scheme must be http or https", c.Lookup.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid lookup base_url %q: missing host", c.Lookup.BaseURL)
	}
	return nil
}

// ValidateVision checks that card extraction can run.
func (c *Config) ValidateVision() error {
	if strings.TrimSpace(c.Vision.APIKey) == "" {
		return errors.New("vision API key not configured (set GEMINI_API_KEY)")
	}
	return nil
}

// LookupClientConfig builds lookup client settings; the limiter is supplied
// by the caller.
func (c *Config) LookupClientConfig() lookup.Config {
	return lookup.Config{
		BaseURL:   c.Lookup.BaseURL,
		UserAgent: c.Lookup.UserAgent,
		Timeout:   c.GetLookupTimeout(),
	}
}

// VisionClientConfig builds vision client settings; the limiter is supplied
// by the caller.
func (c *Config) VisionClientConfig() perception.VisionConfig {
	return perception.VisionConfig{
		APIKey: c.Vision.APIKey,
		Model:  c.Vision.Model,
	}
}
