package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHIMPCHAIN_MAILCHIMP_API_KEY
const EnvPrefix = "CHIMPCHAIN"

const placeholderAPIKey = "your-api-key-here"

// Load loads the configuration from file and environment. Without an
// explicit path a missing config file is not an error, so the API key may
// come from the environment alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about
	for _, key := range []string{"mailchimp.api_key", "mailchimp.base_url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".chimpchain"))
		}
		v.AddConfigPath("/etc/chimpchain/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Defaults.MergeFields = upperKeys(cfg.Defaults.MergeFields)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed reports which file Load would read, for diagnostics.
func ConfigFileUsed(configPath string) string {
	if configPath != "" {
		return configPath
	}
	for _, dir := range searchPaths() {
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func searchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".chimpchain"))
	}
	return append(paths, "/etc/chimpchain")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Mailchimp defaults
	v.SetDefault("mailchimp.timeout", "4s")
	v.SetDefault("mailchimp.method_override", true)
	v.SetDefault("mailchimp.concurrency", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// merge tags are upper-case; viper lower-cases map keys
func upperKeys(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[strings.ToUpper(key)] = value
	}
	return out
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	apiKey := strings.TrimSpace(cfg.Mailchimp.APIKey)
	if apiKey == "" || apiKey == placeholderAPIKey {
		return fmt.Errorf("mailchimp.api_key must be set to a valid API key (or %s_MAILCHIMP_API_KEY)", EnvPrefix)
	}
	if cfg.Mailchimp.BaseURL == "" && !strings.Contains(apiKey, "-") {
		return fmt.Errorf("mailchimp.api_key has no datacenter suffix (e.g. -us6) and no mailchimp.base_url is set")
	}

	if cfg.Mailchimp.Timeout <= 0 {
		return fmt.Errorf("mailchimp.timeout must be positive, got %s", cfg.Mailchimp.Timeout)
	}
	if cfg.Mailchimp.Concurrency < 1 {
		return fmt.Errorf("mailchimp.concurrency must be at least 1, got %d", cfg.Mailchimp.Concurrency)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset %q has an empty expression", name)
		}
	}

	return nil
}
