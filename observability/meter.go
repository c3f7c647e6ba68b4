package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/aemkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns the client's meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the client's metric instruments.
type Metrics struct {
	callTotal      metric.Int64Counter
	callDuration   metric.Float64Histogram
	callActive     metric.Int64UpDownCounter
	classification metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	callTotal, err := meter.Int64Counter("aem.client.calls",
		metric.WithDescription("Total number of calls to the AEM server by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aem.client.calls counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram("aem.client.call.duration",
		metric.WithDescription("Duration of calls to the AEM server including the body read"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aem.client.call.duration histogram: %w", err)
	}

	callActive, err := meter.Int64UpDownCounter("aem.client.calls.active",
		metric.WithDescription("Number of calls in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aem.client.calls.active counter: %w", err)
	}

	classification, err := meter.Int64Counter("aem.client.classifications",
		metric.WithDescription("Response classifications by operation and variant"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aem.client.classifications counter: %w", err)
	}

	return &Metrics{
		callTotal:      callTotal,
		callDuration:   callDuration,
		callActive:     callActive,
		classification: classification,
	}, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns instruments on the global meter, created once. The
// global provider delegates to whatever provider InitMeter installs later.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(Meter())
		if err != nil {
			m, _ = NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordCallStart increments the in-flight call count.
func (m *Metrics) RecordCallStart(ctx context.Context, method string) {
	m.callActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrMethod, method)))
}

// RecordCallEnd decrements in-flight calls and records the completed call.
func (m *Metrics) RecordCallEnd(ctx context.Context, method, outcome string, duration time.Duration) {
	m.callActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrMethod, method)))
	m.callTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrMethod, method),
		attribute.String(AttrOutcome, outcome),
	))
	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrMethod, method),
	))
}

// Classification outcomes.
const (
	ClassifiedSuccess    = "success"
	ClassifiedFailure    = "error_variant"
	ClassifiedUnexpected = "unexpected"
)

// RecordClassification records the variant a response was classified into.
func (m *Metrics) RecordClassification(ctx context.Context, operation, outcome string) {
	m.classification.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOperation, operation),
		attribute.String(AttrOutcome, outcome),
	))
}
