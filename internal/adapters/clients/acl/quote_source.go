package acl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quoteboard/internal/adapters/clients"
	"github.com/jsamuelsen/quoteboard/internal/domain"
	"github.com/jsamuelsen/quoteboard/internal/platform/logging"
)

var (
	// ErrCircuitOpen is reported by QuoteSource.Check while the upstream circuit is open.
	ErrCircuitOpen = errors.New("upstream circuit open")

	// ErrUpstreamFailing is reported by QuoteSource.Check when the breaker is
	// disabled and the failure threshold was reached. Fetches still go out.
	ErrUpstreamFailing = errors.New("upstream failing")
)

// QuoteSourceConfig contains configuration for the quote source.
type QuoteSourceConfig struct {
	// Client is the HTTP client. Its BaseURL points at the quote host.
	Client *clients.Client

	// Path is requested relative to the client base URL.
	Path string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteSource implements ports.QuoteSource against an endpoint that returns
// a JSON array of strings. Only the first element is used.
type QuoteSource struct {
	BaseAdapter

	path   string
	logger *slog.Logger
}

// NewQuoteSource creates a quote source adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteSource(cfg QuoteSourceConfig) *QuoteSource {
	if cfg.Client == nil {
		panic("QuoteSource: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.Path
	if path == "" {
		path = "/"
	}

	return &QuoteSource{
		BaseAdapter: NewBaseAdapter(cfg.Client),
		path:        path,
		logger:      logger.With(slog.String("component", "acl.QuoteSource")),
	}
}

// FetchQuote issues one GET and returns element 0 of the response array.
// Every failure is a *domain.FetchError.
func (s *QuoteSource) FetchQuote(ctx context.Context) (domain.Quote, error) {
	s.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", s.path))

	body, err := s.Get(ctx, s.path, "fetch quote")
	if err != nil {
		return "", s.fail("request failed", err)
	}

	payload, err := DecodeResponse[[]string](body)
	if err != nil {
		return "", s.fail("malformed response",
			domain.NewValidationError("body", err.Error()))
	}

	s.logger.Log(ctx, logging.LevelTrace, "decoded response",
		slog.Int("quotes", len(payload)),
		slog.Any("payload", payload))

	if len(payload) == 0 {
		return "", s.fail("empty response",
			domain.NewValidationError("body", "expected at least one quote"))
	}

	return domain.Quote(payload[0]), nil
}

func (s *QuoteSource) fail(reason string, cause error) error {
	return domain.NewFetchError(s.ServiceName(), reason, cause)
}

// Name returns the health check name for this source.
// Implements ports.HealthChecker.
func (s *QuoteSource) Name() string {
	return s.ServiceName()
}

// Check reports unhealthy while the upstream circuit is open, or while the
// failure threshold is reached with the breaker disabled. It never calls the
// upstream, so readiness probes do not consume quotes.
// Implements ports.HealthChecker.
func (s *QuoteSource) Check(_ context.Context) error {
	snap := s.Client().Circuit()

	switch {
	case snap.State == clients.StateOpen:
		return fmt.Errorf("%w, retry at %s", ErrCircuitOpen, snap.RetryAt.Format("15:04:05"))
	case snap.Failing:
		return fmt.Errorf("%w: %d consecutive failures", ErrUpstreamFailing, snap.Failures)
	default:
		return nil
	}
}
