package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("file with defaults", func(t *testing.T) {
		path := writeConfig(t, `
mailchimp:
  api_key: 0123456789abcdef-us6
defaults:
  merge_fields:
    fname: Friend
filter:
  presets:
    big: memberCount() >= 100
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "0123456789abcdef-us6", cfg.Mailchimp.APIKey)
		assert.Equal(t, 4*time.Second, cfg.Mailchimp.Timeout)
		assert.True(t, cfg.Mailchimp.MethodOverride)
		assert.Equal(t, 5, cfg.Mailchimp.Concurrency)
		assert.Equal(t, map[string]any{"FNAME": "Friend"}, cfg.Defaults.MergeFields)
		assert.Equal(t, "memberCount() >= 100", cfg.Filter.Presets["big"])
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
		assert.True(t, cfg.Logging.Color)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("CHIMPCHAIN_MAILCHIMP_API_KEY", "fedcba9876543210-us2")
		t.Setenv("CHIMPCHAIN_MAILCHIMP_TIMEOUT", "10s")

		path := writeConfig(t, "mailchimp:\n  api_key: 0123456789abcdef-us6\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "fedcba9876543210-us2", cfg.Mailchimp.APIKey)
		assert.Equal(t, 10*time.Second, cfg.Mailchimp.Timeout)
	})

	t.Run("environment only", func(t *testing.T) {
		t.Setenv("CHIMPCHAIN_MAILCHIMP_API_KEY", "fedcba9876543210-us2")
		t.Chdir(t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "fedcba9876543210-us2", cfg.Mailchimp.APIKey)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config")
	})

	t.Run("no key anywhere", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mailchimp.api_key")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Mailchimp: MailchimpConfig{
				APIKey:      "0123456789abcdef-us6",
				Timeout:     4 * time.Second,
				Concurrency: 5,
			},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		errContains string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:        "placeholder key",
			mutate:      func(cfg *Config) { cfg.Mailchimp.APIKey = "your-api-key-here" },
			errContains: "mailchimp.api_key",
		},
		{
			name:        "key without datacenter",
			mutate:      func(cfg *Config) { cfg.Mailchimp.APIKey = "0123456789abcdef" },
			errContains: "datacenter",
		},
		{
			name: "key without datacenter but base url",
			mutate: func(cfg *Config) {
				cfg.Mailchimp.APIKey = "0123456789abcdef"
				cfg.Mailchimp.BaseURL = "http://localhost:8080/3.0"
			},
		},
		{
			name:        "zero timeout",
			mutate:      func(cfg *Config) { cfg.Mailchimp.Timeout = 0 },
			errContains: "mailchimp.timeout",
		},
		{
			name:        "zero concurrency",
			mutate:      func(cfg *Config) { cfg.Mailchimp.Concurrency = 0 },
			errContains: "mailchimp.concurrency",
		},
		{
			name:        "bad level",
			mutate:      func(cfg *Config) { cfg.Logging.Level = "trace" },
			errContains: "invalid logging level",
		},
		{
			name:        "bad format",
			mutate:      func(cfg *Config) { cfg.Logging.Format = "xml" },
			errContains: "invalid logging format",
		},
		{
			name:        "empty preset",
			mutate:      func(cfg *Config) { cfg.Filter.Presets = map[string]string{"x": " "} },
			errContains: `filter preset "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
