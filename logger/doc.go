// Package logger provides structured logging for the AEM client using
// zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers. Sink adapts a Logger into the lazy message
// callback that the transport and endpoint clients accept.
//
// # Usage
//
//	log := logger.Get(logger.ComponentPackageManager)
//	log.Info("package installed", logger.Fields("target", target))
//
//	client := packagemanager.New(adapter, packagemanager.WithSink(log.Sink(zerolog.DebugLevel)))
package logger
