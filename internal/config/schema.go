package config

import "time"

// Config holds cudl-pack configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Conversion ConversionCfg `mapstructure:"conversion" yaml:"conversion"`
	Namespaces NamespacesCfg `mapstructure:"namespaces" yaml:"namespaces"`
	Batch      BatchCfg      `mapstructure:"batch" yaml:"batch"`
	Logging    LoggingCfg    `mapstructure:"logging" yaml:"logging"`
}

// ConversionCfg configures item conversion.
type ConversionCfg struct {
	DefaultPlugins  bool     `mapstructure:"default_plugins" yaml:"default_plugins"`   // Apply the default plugin set
	Plugins         []string `mapstructure:"plugins" yaml:"plugins"`                   // Additional plugins by name
	PageConcurrency int      `mapstructure:"page_concurrency" yaml:"page_concurrency"` // Pages converted at once
	PostValidate    bool     `mapstructure:"post_validate" yaml:"post_validate"`       // Validate generated internal items
	Indent          string   `mapstructure:"indent" yaml:"indent"`                     // Output indentation; empty for compact
}

// NamespacesCfg configures resolution of @namespace references.
type NamespacesCfg struct {
	// Dir is where relative references are looked up. Supports ${ENV_VAR}.
	Dir                string `mapstructure:"dir" yaml:"dir"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds" yaml:"http_timeout_seconds"`
	MaxRetries         uint   `mapstructure:"max_retries" yaml:"max_retries"`
}

// BatchCfg configures batch and watch conversion of directories.
type BatchCfg struct {
	MaxWorkers int    `mapstructure:"max_workers" yaml:"max_workers"` // Files converted at once
	Pattern    string `mapstructure:"pattern" yaml:"pattern"`         // Glob matched against file names
}

// LoggingCfg configures the process logger.
type LoggingCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Conversion: ConversionCfg{
			DefaultPlugins:  true,
			Plugins:         []string{},
			PageConcurrency: 8,
			PostValidate:    true,
			Indent:          "  ",
		},
		Namespaces: NamespacesCfg{
			HTTPTimeoutSeconds: 10,
			MaxRetries:         3,
		},
		Batch: BatchCfg{
			MaxWorkers: 4,
			Pattern:    "*.json",
		},
		Logging: LoggingCfg{
			Level:  "info",
			Format: "text",
		},
	}
}

// HTTPTimeout returns the namespace fetch timeout.
func (c NamespacesCfg) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// ResolvedDir returns Dir with ${ENV_VAR} references expanded.
func (c NamespacesCfg) ResolvedDir() string {
	return ResolveEnvVars(c.Dir)
}
