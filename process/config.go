package process

import (
	"fmt"
	"time"
)

// Config configures process-level fault handling.
type Config struct {
	// GracePeriod delays the exit after a production rejection so the
	// record reaches every sink.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.GracePeriod == 0 {
		c.GracePeriod = time.Second
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.GracePeriod < 0 {
		return fmt.Errorf("process.grace_period must be non-negative (got: %s)", c.GracePeriod)
	}
	return nil
}
