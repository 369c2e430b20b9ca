package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable applyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GEMINI_MODEL", "SCRYFALL_BASE_URL", "MTGC_OUTPUT_DIR"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gemini-2.5-pro", cfg.Vision.Model)
	assert.Equal(t, "https://api.scryfall.com", cfg.Lookup.BaseURL)
	assert.Equal(t, "MTGCollections/1.0", cfg.Lookup.UserAgent)
	assert.Equal(t, 100*time.Millisecond, cfg.GetLookupInterval())
	assert.Equal(t, time.Duration(0), cfg.GetVisionInterval())
	assert.Equal(t, 30*time.Second, cfg.GetLookupTimeout())
	assert.Equal(t, ".", cfg.GetOutputDir())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateVision(), "no key by default")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "mtgc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lookup:\n  min_interval: 250ms\noutput:\n  dir: out\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.GetLookupInterval())
	assert.Equal(t, "out", cfg.GetOutputDir())
	assert.Equal(t, "https://api.scryfall.com", cfg.Lookup.BaseURL)
	assert.Equal(t, "gemini-2.5-pro", cfg.Vision.Model)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtgc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lookup: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "mtgc.yaml")

	cfg := DefaultConfig()
	cfg.Vision.APIKey = "secret"
	cfg.Vision.Model = "gemini-2.5-flash"
	cfg.Lookup.Timeout = "5s"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", loaded.Vision.Model)
	assert.Equal(t, 5*time.Second, loaded.GetLookupTimeout())
	assert.Empty(t, loaded.Vision.APIKey)
	assert.Equal(t, "secret", cfg.Vision.APIKey, "Save leaves the receiver untouched")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMINI_MODEL", "gemini-env")
	t.Setenv("SCRYFALL_BASE_URL", "http://localhost:9999")
	t.Setenv("MTGC_OUTPUT_DIR", "/tmp/cards")

	path := filepath.Join(t.TempDir(), "mtgc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vision:\n  model: from-file\n  api_key: file-key\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Vision.APIKey)
	assert.Equal(t, "gemini-env", cfg.Vision.Model)
	assert.Equal(t, "http://localhost:9999", cfg.Lookup.BaseURL)
	assert.Equal(t, "/tmp/cards", cfg.GetOutputDir())
	assert.NoError(t, cfg.ValidateVision())
}

func TestEnvOverrides_EmptyValuesIgnored(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Vision: VisionConfig{APIKey: "kept"}}
	cfg.applyEnvOverrides()
	assert.Equal(t, "kept", cfg.Vision.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-dotenv\nGEMINI_MODEL=dotenv-model\n"), 0o644))

	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))
	t.Setenv("GEMINI_MODEL", "already-set")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("GEMINI_API_KEY"))
	assert.Equal(t, "already-set", os.Getenv("GEMINI_MODEL"), ".env never overrides the process")

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{
		Vision: VisionConfig{MinInterval: "soon"},
		Lookup: LookupConfig{MinInterval: "-1s", Timeout: "0s"},
	}
	assert.Equal(t, time.Duration(0), cfg.GetVisionInterval())
	assert.Equal(t, 100*time.Millisecond, cfg.GetLookupInterval())
	assert.Equal(t, 30*time.Second, cfg.GetLookupTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://api.scryfall.com", false},
		{"http://127.0.0.1:8080", false},
		{"ftp://example.com", true},
		{"api.scryfall.com", true},
		{"https://", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Lookup.BaseURL = tt.url
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestClientConfigs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vision.APIKey = "k"
	cfg.Lookup.Timeout = "2s"

	lc := cfg.LookupClientConfig()
	assert.Equal(t, "https://api.scryfall.com", lc.BaseURL)
	assert.Equal(t, 2*time.Second, lc.Timeout)
	assert.Nil(t, lc.Limiter)

	vc := cfg.VisionClientConfig()
	assert.Equal(t, "k", vc.APIKey)
	assert.Equal(t, "gemini-2.5-pro", vc.Model)
}
