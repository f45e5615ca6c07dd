package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quoteboard/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quoteboard/internal/platform/config"
	"github.com/jsamuelsen/quoteboard/internal/platform/logging"
)

const (
	// instrumentationName is used for OpenTelemetry tracer and meter.
	instrumentationName = "github.com/jsamuelsen/quoteboard/internal/adapters/clients"

	// defaultTimeout applies when no timeout is configured.
	defaultTimeout = 10 * time.Second
)

// Config configures an HTTP client instance.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string

	// ServiceName identifies the downstream service in logs, spans and metrics.
	ServiceName string

	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration

	// UserAgent is sent on every request when set.
	UserAgent string

	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger

	// HTTPClient replaces the pooled client built from Timeout and Transport.
	HTTPClient *http.Client
}

// Client is an instrumented HTTP client for one downstream service.
// Every request is attempted exactly once. It provides opt-in circuit
// breaking, OpenTelemetry spans and metrics, request/correlation ID
// propagation and structured logging.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	userAgent   string
	logger      *slog.Logger
	cb          *CircuitBreaker
	tracer      trace.Tracer
	metrics     *instruments
}

// instruments are the OpenTelemetry metrics shared by every request.
type instruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	duration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of outbound quote requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Outbound quote requests by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &instruments{duration: duration, total: total}, nil
}

func (m *instruments) record(ctx context.Context, attrs []attribute.KeyValue, d time.Duration) {
	opt := metric.WithAttributes(attrs...)
	m.duration.Record(ctx, d.Seconds(), opt)
	m.total.Add(ctx, 1, opt)
}

// New creates a new instrumented HTTP client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
		Passive:       !cfg.Circuit.Enabled,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	metrics, err := newInstruments(otel.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.Timeout, cfg.Transport)
	}

	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		userAgent:   cfg.UserAgent,
		logger:      logger,
		cb:          cb,
		tracer:      otel.Tracer(instrumentationName),
		metrics:     metrics,
	}, nil
}

func newHTTPClient(timeout time.Duration, t config.TransportConfig) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if t.MaxIdleConns > 0 {
		transport.MaxIdleConns = t.MaxIdleConns
	}

	if t.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = t.MaxIdleConnsPerHost
	}

	if t.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = t.IdleConnTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Do sends req once. Responses with a status below 500 are returned to the
// caller, who must close the body. Transport failures wrap ErrRequestFailed,
// 5xx answers are returned as *StatusError with the body already closed,
// and an open circuit yields ErrCircuitOpen without touching the network.
// The circuit only opens when the breaker is enabled.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.recordMetrics(ctx, req.Method, 0, time.Since(start), "circuit_open")
		logger.WarnContext(ctx, "request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req.WithContext(ctx))
	duration := time.Since(start)
	logger = logger.With(slog.Duration("duration", duration))

	if err != nil {
		c.cb.RecordFailure()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, req.Method, 0, duration, "error")
		logger.WarnContext(ctx, "request failed", slog.Any("error", err))

		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.recordMetrics(ctx, req.Method, resp.StatusCode, duration, statusCategory(resp.StatusCode))

	return c.classify(ctx, logger, span, resp)
}

// classify feeds the breaker from the status code. Only 5xx counts as an
// upstream failure; 4xx means the upstream is alive and answered.
func (c *Client) classify(ctx context.Context, logger *slog.Logger, span trace.Span, resp *http.Response) (*http.Response, error) {
	status := resp.StatusCode

	switch {
	case status >= http.StatusInternalServerError:
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))

		if err := resp.Body.Close(); err != nil {
			logger.DebugContext(ctx, "failed to close response body", slog.Any("error", err))
		}

		logger.WarnContext(ctx, "upstream server error", slog.Int("status", status))

		return nil, &StatusError{StatusCode: status}
	case status >= http.StatusBadRequest:
		c.cb.RecordSuccess()
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
	default:
		c.cb.RecordSuccess()
	}

	logger.DebugContext(ctx, "request completed", slog.Int("status", status))

	return resp, nil
}

// Get performs an HTTP GET request for path relative to the base URL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req)
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// Circuit returns a snapshot of the circuit breaker.
func (c *Client) Circuit() CircuitSnapshot {
	return c.cb.Snapshot()
}

// ServiceName returns the downstream service name.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// injectHeaders propagates request and correlation IDs and sets the user agent.
func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// buildURL joins the base URL and path.
func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.metrics.record(ctx, attrs, duration)
}

// statusCategory returns "2xx", "4xx" and so on.
func statusCategory(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
