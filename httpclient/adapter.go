package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/logger"
	"github.com/kbukum/aemkit/observability"
)

var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once
)

// DefaultHTTPClient returns the process-wide *http.Client, created on first
// use and never modified afterwards. It has no client-level timeout; each
// Adapter bounds its calls through the request context.
func DefaultHTTPClient() *http.Client {
	sharedClientOnce.Do(func() {
		sharedClient = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	})
	return sharedClient
}

// Adapter is the untargeted transport for one server. Target binds it to an
// endpoint. An Adapter is safe for concurrent use.
type Adapter struct {
	httpClient *http.Client
	config     Config
	baseURL    *url.URL
	sink       logger.Sink
	metrics    *observability.Metrics
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithHTTPClient injects the *http.Client used for calls.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.httpClient = c }
}

// WithSink sets the diagnostic sink. The default discards messages.
func WithSink(s logger.Sink) Option {
	return func(a *Adapter) { a.sink = s }
}

// WithMetrics sets the metric instruments. The default uses
// observability.DefaultMetrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// New creates an Adapter. Without WithHTTPClient it uses DefaultHTTPClient,
// or a dedicated client when TLS settings are present.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Validation(err.Error()).WithCause(err)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.InvalidInput("base_url", err.Error())
	}

	a := &Adapter{
		config:  cfg,
		baseURL: base,
		sink:    logger.NopSink,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.httpClient == nil {
		a.httpClient, err = clientFor(cfg.TLS)
		if err != nil {
			return nil, errors.Validation(err.Error()).WithCause(err)
		}
	}
	if a.metrics == nil {
		a.metrics = observability.DefaultMetrics()
	}
	if a.sink == nil {
		a.sink = logger.NopSink
	}
	return a, nil
}

// clientFor returns the shared client, or a new one carrying the TLS settings.
func clientFor(tlsCfg *TLSConfig) (*http.Client, error) {
	if !tlsCfg.IsEnabled() {
		return DefaultHTTPClient(), nil
	}
	built, err := tlsCfg.Build()
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = built
	return &http.Client{Transport: transport}, nil
}

// Target returns a transport bound to the endpoint at path below the base URL.
func (a *Adapter) Target(path string) *Client {
	return &Client{adapter: a, url: a.baseURL.JoinPath(path)}
}

// BaseURL returns the server's base URL.
func (a *Adapter) BaseURL() string {
	return a.baseURL.String()
}

// Config returns the adapter's configuration.
func (a *Adapter) Config() Config {
	return a.config
}

// Unwrap returns the underlying *http.Client.
func (a *Adapter) Unwrap() *http.Client {
	return a.httpClient
}

// Close releases idle connections of a dedicated client. The shared client
// is left untouched.
func (a *Adapter) Close(_ context.Context) error {
	if a.httpClient != DefaultHTTPClient() {
		a.httpClient.CloseIdleConnections()
	}
	return nil
}

// do issues req and normalizes the outcome: (nil, nil) for 204, a Response
// for a 2xx body of the expected type, an AppError otherwise.
func (a *Adapter) do(ctx context.Context, req *http.Request, target string, expected ContentType) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	ctx, call := observability.StartCall(ctx, a.metrics, req.Method, target)
	req = req.WithContext(ctx)

	correlationID := a.prepare(ctx, req, expected)
	call.SetAttributes(
		attribute.String(observability.AttrExpectedContentType, expected.String()),
		attribute.String(observability.AttrCorrelationID, correlationID),
	)
	a.sink.Emit(func() string { return req.Method + " " + target })

	resp, err := a.httpClient.Do(req)
	if err != nil {
		fault := errors.TransportFault(target, err)
		call.End(ctx, observability.OutcomeTransportFault, 0, fault)
		a.sink.Emit(func() string { return fault.Message })
		return nil, fault
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fault := errors.TransportFault(target, fmt.Errorf("read response body: %w", err))
		call.End(ctx, observability.OutcomeTransportFault, resp.StatusCode, fault)
		return nil, fault
	}

	result, err := evaluate(target, resp, body, expected)
	outcome := observability.OutcomeSuccess
	switch {
	case err != nil:
		outcome = observability.OutcomeProtocolViolation
	case result == nil:
		outcome = observability.OutcomeNoContent
	default:
		result.correlationID = correlationID
	}
	call.End(ctx, outcome, resp.StatusCode, err)
	a.sink.Emit(func() string {
		return fmt.Sprintf("%s %s -> %d %s (%dms)", req.Method, target, resp.StatusCode, outcome, call.Duration().Milliseconds())
	})
	return result, err
}

// prepare applies headers and auth and returns the correlation id sent.
func (a *Adapter) prepare(ctx context.Context, req *http.Request, expected ContentType) string {
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	if expected != "" {
		req.Header.Set("Accept", expected.String())
	}

	var id string
	if !a.config.DisableCorrelationID {
		if fromCtx, ok := logger.CorrelationID(ctx); ok {
			id = fromCtx
		} else {
			id = uuid.NewString()
		}
		req.Header.Set(a.config.CorrelationHeader, id)
	}

	a.config.Auth.apply(req)
	return id
}

// evaluate maps a received response onto the transport outcome contract.
func evaluate(target string, resp *http.Response, body []byte, expected ContentType) (*Response, error) {
	status := resp.StatusCode
	if status == http.StatusNoContent {
		return nil, nil
	}
	if status < 200 || status > 299 {
		return nil, errors.StatusFailure(target, status, reasonPhrase(resp), body)
	}
	if len(body) == 0 {
		return nil, errors.MissingBody(target, status)
	}

	actual := ContentType(resp.Header.Get("Content-Type"))
	if actual == "" || !expected.Compatible(actual) {
		return nil, errors.ContentTypeMismatch(target, expected.String(), actual.String(), status, body)
	}

	return &Response{
		statusCode:  status,
		contentType: actual,
		header:      resp.Header.Clone(),
		body:        body,
	}, nil
}

// reasonPhrase returns the reason part of "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	_, reason, found := strings.Cut(resp.Status, " ")
	if !found {
		return ""
	}
	return reason
}
