package httpclient

import (
	"context"

	"github.com/kbukum/aemkit/component"
)

// Component wraps an Adapter with lifecycle management so the CLI can start
// and stop it through the component registry.
type Component struct {
	adapter *Adapter
	config  Config
	opts    []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new transport component.
// The adapter is created lazily in Start().
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	name := c.config.Name
	if name == "" {
		name = "aem"
	}
	return name
}

// Start creates the adapter.
func (c *Component) Start(_ context.Context) error {
	a, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.adapter = a
	return nil
}

// Stop closes the adapter and releases resources.
func (c *Component) Stop(ctx context.Context) error {
	if c.adapter != nil {
		return c.adapter.Close(ctx)
	}
	return nil
}

// Health reports healthy once the adapter has been created. It does not
// contact the server.
func (c *Component) Health(_ context.Context) component.Health {
	if c.adapter == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns component description for the startup summary.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.Name(),
		Type:    "aem-transport",
		Details: c.config.BaseURL + " (" + c.config.Auth.String() + ")",
	}
}

// Adapter returns the underlying adapter. Must be called after Start().
func (c *Component) Adapter() *Adapter {
	return c.adapter
}
