package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteboard/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quoteboard/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quoteboard/internal/platform/config"
	"github.com/jsamuelsen/quoteboard/internal/platform/telemetry"
)

const (
	// DefaultRequestTimeout is the default timeout for API requests.
	DefaultRequestTimeout = 15 * time.Second

	// APIPrefix is the route prefix of the JSON API.
	APIPrefix = "/api/v1"

	// EventsPath is the full path of the board event stream.
	EventsPath = APIPrefix + "/board/events"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	Logger    *slog.Logger
	AppConfig *config.AppConfig

	// Handlers left nil are not registered.
	HealthHandler *handlers.HealthHandler
	BoardHandler  *handlers.BoardHandler
	PageHandler   *handlers.PageHandler

	// Timeout bounds API requests other than the event stream. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing and metrics
//  5. Logging (skips /-/ endpoints)
//  6. Timeout (API group only, event stream excluded)
//
// Route groups:
//   - /-/ operational endpoints
//   - / HTML page and its form posts
//   - /api/v1/ JSON API and event stream
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	serviceName := "quoteboard"
	if cfg.AppConfig != nil && cfg.AppConfig.Name != "" {
		serviceName = cfg.AppConfig.Name
	}

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(serviceName)...)
	engine.Use(middleware.Logging(cfg.Logger))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.PageHandler != nil {
		cfg.PageHandler.RegisterRoutes(engine)
	}

	api := engine.Group(APIPrefix)
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout, EventsPath))
	}

	if cfg.BoardHandler != nil {
		cfg.BoardHandler.RegisterRoutes(api)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with the default timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
	boardHandler *handlers.BoardHandler,
	pageHandler *handlers.PageHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		BoardHandler:  boardHandler,
		PageHandler:   pageHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
