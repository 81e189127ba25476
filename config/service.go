package config

import (
	"fmt"

	"github.com/kbukum/faultline/logger"
	"github.com/kbukum/faultline/util"
)

// EnvDevelopment is the profile used when ENVIRONMENT is unset.
const EnvDevelopment = "development"

// ServiceConfig contains the fields every service needs. Services extend it
// by embedding:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
// Environment is read from the ENVIRONMENT variable. Only "production"
// changes behavior; every other value is a development profile.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig. The method is promoted to
// embedding structs.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// IsProduction reports whether the production profile is active.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == logger.ProfileProduction
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	c.Environment = util.Coalesce(c.Environment, EnvDevelopment)
	// The logger derives its sinks and threshold from these two.
	c.Logging.ServiceName = util.Coalesce(c.Logging.ServiceName, c.Name)
	c.Logging.Environment = c.Environment
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
// Embedding structs call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	if err := util.ValidateNonEmpty("config.name", c.Name); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
