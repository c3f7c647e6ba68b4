// Package bootstrap runs aemctl tasks with a uniform lifecycle.
//
// NewApp validates the configuration, initializes the logger and registers
// the AEM transport as a component. RunTask then:
//
//  1. starts every registered component,
//  2. runs OnStart hooks (OTLP telemetry when an endpoint is configured),
//  3. checks component health and runs OnReady hooks,
//  4. runs the task with a context canceled on SIGINT or SIGTERM,
//  5. runs OnStop hooks in reverse order and stops the components.
package bootstrap
