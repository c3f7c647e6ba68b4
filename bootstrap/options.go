package bootstrap

import (
	"time"

	"github.com/kbukum/aemkit/httpclient"
	"github.com/kbukum/aemkit/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	version         string
	transportOpts   []httpclient.Option
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{version: "dev"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's log section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithVersion sets the version reported in logs and telemetry.
func WithVersion(v string) Option {
	return func(o *appOptions) {
		o.version = v
	}
}

// WithTransportOptions passes options to the transport adapter, e.g. an
// injected *http.Client.
func WithTransportOptions(opts ...httpclient.Option) Option {
	return func(o *appOptions) {
		o.transportOpts = append(o.transportOpts, opts...)
	}
}
