package logger

import (
	"fmt"

	"github.com/kbukum/faultline/util"
)

// ProfileProduction is the only environment value that enables persistent
// sinks and raises the threshold to info.
const ProfileProduction = "production"

// Config contains logging configuration.
type Config struct {
	Level string `yaml:"level" mapstructure:"level"`
	// ConsoleLevel gates the interactive sink on its own; defaults to Level.
	ConsoleLevel string `yaml:"console_level" mapstructure:"console_level"`
	Output       string `yaml:"output" mapstructure:"output"`
	NoColor      bool   `yaml:"no_color" mapstructure:"no_color"`
	ServiceName  string `yaml:"service_name" mapstructure:"service_name"`
	Environment  string `yaml:"environment" mapstructure:"environment"`

	// Persistent sinks. Files defaults to true in production only.
	Files        *bool  `yaml:"files" mapstructure:"files"`
	Dir          string `yaml:"dir" mapstructure:"dir"`
	DatePattern  string `yaml:"date_pattern" mapstructure:"date_pattern"` // Go layout
	MaxSize      int    `yaml:"max_size" mapstructure:"max_size"`         // megabytes
	MaxAge       int    `yaml:"max_age" mapstructure:"max_age"`           // days
	MaxBodyBytes int    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// RedactSecrets masks credential headers and caps request bodies in
	// LogError. Defaults to true in production.
	RedactSecrets *bool `yaml:"redact_secrets" mapstructure:"redact_secrets"`
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Environment == ProfileProduction
}

// FilesEnabled reports whether the persistent sinks are active.
func (c *Config) FilesEnabled() bool {
	return util.Deref(c.Files)
}

// RedactionEnabled reports whether request context is sanitized before logging.
func (c *Config) RedactionEnabled() bool {
	return util.Deref(c.RedactSecrets)
}

// ApplyDefaults applies default values to logging configuration. The level
// and sink set follow the environment profile unless set explicitly.
func (c *Config) ApplyDefaults() {
	prod := c.IsProduction()
	if c.Level == "" {
		if prod {
			c.Level = "info"
		} else {
			c.Level = "debug"
		}
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.ConsoleLevel == "" {
		c.ConsoleLevel = c.Level
	}
	if c.Files == nil {
		c.Files = util.Ptr(prod)
	}
	if c.RedactSecrets == nil {
		c.RedactSecrets = util.Ptr(prod)
	}
	if c.Dir == "" {
		c.Dir = "logs"
	}
	if c.DatePattern == "" {
		c.DatePattern = "2006-01-02"
	}
	if c.MaxSize == 0 {
		c.MaxSize = 20
	}
	if c.MaxAge == 0 {
		c.MaxAge = 14
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 4096
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	if !contains(validLevels, c.ConsoleLevel) {
		return fmt.Errorf("logging.console_level must be one of %v (got: %s)", validLevels, c.ConsoleLevel)
	}
	validOutputs := []string{"stdout", "stderr"}
	if !contains(validOutputs, c.Output) {
		return fmt.Errorf("logging.output must be one of %v (got: %s)", validOutputs, c.Output)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("logging.max_size must be non-negative (got: %d)", c.MaxSize)
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("logging.max_age must be non-negative (got: %d)", c.MaxAge)
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
