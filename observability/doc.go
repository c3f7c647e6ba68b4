// Package observability provides OpenTelemetry tracing and metrics for calls
// to the AEM server.
//
// Every transport call runs inside a Call, which owns one client span and
// records the aem.client.* instruments:
//
//	ctx, call := observability.StartCall(ctx, observability.DefaultMetrics(), "POST", target)
//	defer call.End(ctx, observability.OutcomeSuccess, 200, nil)
//
// Export is opt-in. The CLI installs OTLP providers when an endpoint is set:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("aemctl"))
//	defer tp.Shutdown(ctx)
package observability
