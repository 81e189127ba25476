package bootstrap

import (
	"fmt"

	"github.com/kbukum/faultline/config"
	"github.com/kbukum/faultline/observability"
	"github.com/kbukum/faultline/process"
	"github.com/kbukum/faultline/server"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds AppConfig satisfies it via promoted methods.
//
//	type MyConfig struct {
//	    bootstrap.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Frontend string     `yaml:"frontend" mapstructure:"frontend"`
//	}
//
//	app, err := bootstrap.NewApp[*MyConfig](&cfg)
type Config interface {
	GetAppConfig() *AppConfig
	ApplyDefaults()
	Validate() error
}

// AppConfig is the configuration every service built on App shares.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config        `yaml:"server" mapstructure:"server"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability"`
	Process              process.Config       `yaml:"process" mapstructure:"process"`
}

// GetAppConfig returns the shared configuration.
func (c *AppConfig) GetAppConfig() *AppConfig {
	return c
}

// ApplyDefaults applies defaults to every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Process.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	if err := c.Process.Validate(); err != nil {
		return fmt.Errorf("config.process: %w", err)
	}
	return nil
}
