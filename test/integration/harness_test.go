//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteboard/internal/adapters/clients"
	"github.com/jsamuelsen/quoteboard/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/quoteboard/internal/adapters/http"
	"github.com/jsamuelsen/quoteboard/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quoteboard/internal/app"
	"github.com/jsamuelsen/quoteboard/internal/platform/config"
	"github.com/jsamuelsen/quoteboard/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// upstream is a scriptable stand-in for the remote quote endpoint.
type upstream struct {
	server *httptest.Server

	mu     sync.Mutex
	status int
	body   string
	delay  time.Duration
	calls  int
	header http.Header

	// rotation, when set, is answered one element per request in turn.
	rotation []string
}

func newUpstream() *upstream {
	u := &upstream{status: http.StatusOK, body: `["placeholder"]`}
	u.server = httptest.NewServer(http.HandlerFunc(u.serve))

	return u
}

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.calls++
	u.header = r.Header.Clone()
	status, body, delay := u.status, u.body, u.delay

	if len(u.rotation) > 0 {
		b, _ := json.Marshal(u.rotation[(u.calls-1)%len(u.rotation):][:1])
		body = string(b)
	}
	u.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (u *upstream) respond(status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.status = status
	u.body = body
}

func (u *upstream) rotate(quotes []string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.status = http.StatusOK
	u.rotation = quotes
}

func (u *upstream) slowDown(d time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.delay = d
}

func (u *upstream) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.calls
}

func (u *upstream) lastHeader() http.Header {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.header
}

func (u *upstream) close() {
	u.server.Close()
}

// service is the quote board wired the way the binary wires it, served
// in-process against an upstream stand-in.
type service struct {
	upstream *upstream
	client   *clients.Client
	source   *acl.QuoteSource
	board    *app.QuoteBoard
	handler  *handlers.BoardHandler
	server   *httptest.Server
}

func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "quotes-upstream",
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   100,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger(),
	}
}

func newService(up *upstream, mutate func(*clients.Config)) (*service, error) {
	cfg := testClientConfig(up.server.URL)
	if mutate != nil {
		mutate(cfg)
	}

	client, err := clients.New(cfg)
	if err != nil {
		return nil, err
	}

	source := acl.NewQuoteSource(acl.QuoteSourceConfig{
		Client: client,
		Path:   "/v2/quotes",
		Logger: discardLogger(),
	})

	registry := ports.NewHealthRegistry()
	if err := registry.Register(source); err != nil {
		return nil, err
	}

	board := app.NewQuoteBoard(app.QuoteBoardConfig{
		Source:              source,
		DiscardStaleFetches: true,
		Logger:              discardLogger(),
	})

	boardHandler := handlers.NewBoardHandler(board, 0)

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        discardLogger(),
		AppConfig:     &config.AppConfig{Name: "quoteboard-integration", Version: "test", Environment: "test"},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		BoardHandler:  boardHandler,
		PageHandler:   handlers.NewPageHandler(board, httpadapter.EventsPath),
		Timeout:       5 * time.Second,
	})

	return &service{
		upstream: up,
		client:   client,
		source:   source,
		board:    board,
		handler:  boardHandler,
		server:   httptest.NewServer(engine),
	}, nil
}

func (s *service) close() {
	s.handler.Close()
	s.server.Close()
}

// newTestService starts an upstream and a service and stops both at cleanup.
func newTestService(t *testing.T, mutate func(*clients.Config)) *service {
	t.Helper()

	up := newUpstream()
	t.Cleanup(up.close)

	svc, err := newService(up, mutate)
	if err != nil {
		t.Fatalf("starting service: %v", err)
	}

	t.Cleanup(svc.close)

	return svc
}

// mount runs the initial fetch and waits for it.
func (s *service) mount(ctx context.Context) {
	<-s.board.Start(ctx)
}
