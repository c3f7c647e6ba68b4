package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/aemkit/component"
	"github.com/kbukum/aemkit/logger"
)

// Summary records how the application started and logs it at debug level.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a new startup summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// StartupDuration returns the recorded startup time.
func (s *Summary) StartupDuration() time.Duration {
	return s.startupDuration
}

// Log writes one line for the application and one per component with its
// description and live health.
func (s *Summary) Log(ctx context.Context, registry *component.Registry, log *logger.Logger) {
	log.Debug("Started", logger.Fields(
		"name", s.serviceName,
		"version", s.version,
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
	if registry == nil {
		return
	}

	descriptions := map[string]component.Description{}
	for _, d := range registry.Describe() {
		descriptions[d.Name] = d
	}
	for _, h := range registry.HealthAll(ctx) {
		fields := logger.Fields(
			logger.FieldComponent, h.Name,
			logger.FieldStatus, string(h.Status),
		)
		if d, ok := descriptions[h.Name]; ok {
			fields["type"] = d.Type
			fields["details"] = d.Details
		}
		if h.Message != "" {
			fields["message"] = h.Message
		}
		log.Debug("Component", fields)
	}
}
