package config

import (
	"fmt"

	"github.com/kbukum/aemkit/logger"
	"github.com/kbukum/aemkit/observability"
	"github.com/kbukum/aemkit/validation"
)

// ServiceName names the CLI in logs, spans and config file search paths.
const ServiceName = "aemctl"

// App is the top-level configuration of aemctl.
//
// Example config.yml:
//
//	server:
//	  name: localhost
//	  port: 4502
//	  user: admin
//	  password: admin
//	log:
//	  level: debug
//	tracing:
//	  endpoint: localhost:4318
type App struct {
	Server  Server                     `yaml:"server" mapstructure:"server"`
	Log     logger.Config              `yaml:"log" mapstructure:"log"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Output  string                     `yaml:"output" mapstructure:"output" validate:"oneof=text json"`
}

// DefaultApp returns the configuration used when nothing is configured.
// Tracing export is off until an endpoint is set.
func DefaultApp() App {
	tracing := observability.DefaultTracerConfig(ServiceName)
	tracing.Endpoint = ""
	return App{
		Server:  Default(),
		Log:     logger.Config{ServiceName: ServiceName},
		Tracing: tracing,
		Output:  "text",
	}
}

// ApplyDefaults fills in zero values left by a partial config file.
func (a *App) ApplyDefaults() {
	if a.Log.ServiceName == "" {
		a.Log.ServiceName = ServiceName
	}
	a.Log.ApplyDefaults()
	if a.Tracing.ServiceName == "" {
		a.Tracing.ServiceName = ServiceName
	}
	if a.Output == "" {
		a.Output = "text"
	}
}

// Validate validates every section.
func (a *App) Validate() error {
	if err := validation.Validate(*a); err != nil {
		return err
	}
	if err := a.Server.Validate(); err != nil {
		return err
	}
	if err := a.Log.Validate(); err != nil {
		return fmt.Errorf("config.log: %w", err)
	}
	return nil
}
