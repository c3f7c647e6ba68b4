// Package component defines the lifecycle interfaces shared by the AEM
// transport and the fake server used in tests.
//
// A Registry starts components in registration order, stops them in reverse
// order and collects their health.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line configuration summaries
package component
