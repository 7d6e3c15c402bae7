package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Mailchimp MailchimpConfig `mapstructure:"mailchimp"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// MailchimpConfig holds Mailchimp API connection details
type MailchimpConfig struct {
	APIKey string `mapstructure:"api_key"`
	// BaseURL overrides the datacenter URL derived from the key
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MethodOverride bool          `mapstructure:"method_override"`
	Concurrency    int           `mapstructure:"concurrency"`
}

// DefaultsConfig holds values applied to every subscribe
type DefaultsConfig struct {
	// MergeFields keys are merge tags and are upper-cased on load
	MergeFields map[string]any `mapstructure:"merge_fields"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
