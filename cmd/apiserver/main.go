// Command apiserver runs the HTTP service with the fault-handling stack:
// classified error responses, the not-found body, structured logs with
// daily files in production, and process fault supervision.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/faultline/bootstrap"
	"github.com/kbukum/faultline/config"
)

const serviceName = "apiserver"

// Config is the apiserver configuration.
type Config struct {
	bootstrap.AppConfig `yaml:",inline" mapstructure:",squash"`
	// FrontendOrigin is the browser app allowed to call the API with
	// credentials. Ignored when server.cors.allowed_origins is set.
	FrontendOrigin string `yaml:"frontend_origin" mapstructure:"frontend_origin"`
}

// ApplyDefaults applies defaults, turning FrontendOrigin into the CORS
// allow-list.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.FrontendOrigin != "" && len(c.Server.CORS.AllowedOrigins) == 0 {
		c.Server.CORS.AllowedOrigins = []string{c.FrontendOrigin}
		c.Server.CORS.AllowCredentials = true
	}
	c.AppConfig.ApplyDefaults()
}

func main() {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		// Startup failures take the same path as any uncaught fault.
		app.Supervisor.HandleException(err)
	}
}
