package httpclient

import (
	"fmt"
	"net/url"
	"time"
)

const (
	defaultTimeout           = 60 * time.Second
	defaultCorrelationHeader = "X-Correlation-ID"
)

// Config configures the transport for one server.
type Config struct {
	// Name identifies the transport in logs and health reports.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the scheme, host and port of the server, e.g. http://localhost:4502.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds one call including the body read. Defaults to 60s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures authentication applied to all requests.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// TLS configures the transport for SSL servers. A non-empty TLS config
	// gives the adapter its own *http.Client instead of the shared one.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// CorrelationHeader names the header carrying a per-request id.
	// Defaults to X-Correlation-ID.
	CorrelationHeader string `yaml:"correlation_header" mapstructure:"correlation_header"`

	// DisableCorrelationID stops the adapter from sending correlation ids.
	DisableCorrelationID bool `yaml:"disable_correlation_id" mapstructure:"disable_correlation_id"`
}

// ApplyDefaults fills in zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "aem"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.CorrelationHeader == "" {
		c.CorrelationHeader = defaultCorrelationHeader
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("httpclient: invalid base_url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("httpclient: base_url %q must use http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("httpclient: base_url %q has no host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return c.TLS.Validate()
}
