package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig mirrors the shipped defaults.
func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "quoteboard", Version: "1.0.0", Environment: "local"},
		Server: ServerConfig{
			Port:            DefaultServerPort,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  15 * time.Second,
			MaxRequestSize:  DefaultMaxRequestSize,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Client: ClientConfig{
			Timeout: 10 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:   DefaultClientCircuitMaxFailures,
				Timeout:       30 * time.Second,
				HalfOpenLimit: DefaultClientCircuitHalfOpenLimit,
			},
			Transport: TransportConfig{
				MaxIdleConns:        DefaultTransportMaxIdleConns,
				MaxIdleConnsPerHost: DefaultTransportMaxIdleConnsPerHost,
				IdleConnTimeout:     DefaultTransportIdleConnTimeout,
			},
		},
		Services: ServicesConfig{
			Quote: ServiceEndpointConfig{
				BaseURL: DefaultQuoteBaseURL,
				Path:    DefaultQuotePath,
				Name:    "ron-swanson-quotes",
			},
		},
		Board: BoardConfig{
			FetchOnStart:        true,
			DiscardStaleFetches: true,
			EventHeartbeat:      DefaultEventHeartbeat,
		},
	}
}

func TestValidate_Accepts(t *testing.T) {
	tests := map[string]func(*Config){
		"defaults": func(*Config) {},
		"prod environment": func(c *Config) {
			c.App.Environment = "prod"
		},
		"pretty trace logging": func(c *Config) {
			c.Log.Level, c.Log.Format = "trace", "pretty"
		},
		"file logging with path": func(c *Config) {
			c.Log.File = LogFileConfig{Enabled: true, Path: "/var/log/quoteboard.log", MaxSizeMB: 10}
		},
		"file logging disabled without path": func(c *Config) {
			c.Log.File = LogFileConfig{Enabled: false}
		},
		"telemetry enabled": func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "http://otel:4317", ServiceName: "quoteboard", SamplingRate: 0.5}
		},
		"telemetry disabled without endpoint": func(c *Config) {
			c.Telemetry = TelemetryConfig{}
		},
		"board flags off": func(c *Config) {
			c.Board.FetchOnStart, c.Board.DiscardStaleFetches = false, false
		},
		"local upstream": func(c *Config) {
			c.Services.Quote.BaseURL = "http://127.0.0.1:9090"
		},
		"unbounded write timeout": func(c *Config) {
			c.Server.WriteTimeout = 0
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		key     string
		message string
	}{
		{"app name", func(c *Config) { c.App.Name = "" }, "app.name", "app.name is required"},
		{"unknown environment", func(c *Config) { c.App.Environment = "staging" }, "app.environment", "must be one of: local dev qa prod test"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port", "server.port is required"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port", "must be at most 65535"},
		{"read timeout", func(c *Config) { c.Server.ReadTimeout = 10 * time.Millisecond }, "server.read_timeout", "must be at least"},
		{"request timeout", func(c *Config) { c.Server.RequestTimeout = time.Millisecond }, "server.request_timeout", "must be at least"},
		{"body size", func(c *Config) { c.Server.MaxRequestSize = 0 }, "server.max_request_size", "is required"},
		{"log level case", func(c *Config) { c.Log.Level = "INFO" }, "log.level", "must be one of"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format", "must be one of"},
		{"log file path", func(c *Config) { c.Log.File.Enabled = true }, "log.file.path", "is required when Enabled true"},
		{"log file size", func(c *Config) { c.Log.File.MaxSizeMB = 4096 }, "log.file.max_size", "must be at most 1024"},
		{"telemetry endpoint", func(c *Config) { c.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "qb"} }, "telemetry.endpoint", "is required when"},
		{"telemetry endpoint url", func(c *Config) { c.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "qb", Endpoint: "not a url"} }, "telemetry.endpoint", "must be a valid URL"},
		{"telemetry service", func(c *Config) { c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "http://otel:4317"} }, "telemetry.service_name", "is required when"},
		{"sampling rate", func(c *Config) { c.Telemetry.SamplingRate = 1.5 }, "telemetry.sampling_rate", "must be at most 1"},
		{"client timeout", func(c *Config) { c.Client.Timeout = 0 }, "client.timeout", "is required"},
		{"circuit failures", func(c *Config) { c.Client.CircuitBreaker.MaxFailures = 0 }, "client.circuit_breaker.max_failures", "is required"},
		{"circuit timeout", func(c *Config) { c.Client.CircuitBreaker.Timeout = 500 * time.Millisecond }, "client.circuit_breaker.timeout", "must be at least 1s"},
		{"half open limit", func(c *Config) { c.Client.CircuitBreaker.HalfOpenLimit = 0 }, "client.circuit_breaker.half_open_limit", "is required"},
		{"idle conns", func(c *Config) { c.Client.Transport.MaxIdleConns = 0 }, "client.transport.max_idle_conns", "is required"},
		{"quote url", func(c *Config) { c.Services.Quote.BaseURL = "ron swanson" }, "services.quote.base_url", "services.quote.base_url must be a valid URL"},
		{"quote path", func(c *Config) { c.Services.Quote.Path = "v2/quotes" }, "services.quote.path", `services.quote.path must start with "/"`},
		{"quote name", func(c *Config) { c.Services.Quote.Name = "" }, "services.quote.name", "is required"},
		{"heartbeat", func(c *Config) { c.Board.EventHeartbeat = 100 * time.Millisecond }, "board.event_heartbeat", "must be at least 1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Keys(), tt.key)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.App.Name = ""
	cfg.App.Version = ""
	cfg.Board.EventHeartbeat = 0

	err := cfg.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"app.name", "app.version", "board.event_heartbeat"}, verr.Keys())
	assert.Regexp(t, `^config validation failed:\n  `, err.Error())
}

func TestKeyFromNamespace(t *testing.T) {
	tests := map[string]string{
		"Config.server.port":             "server.port",
		"Config.services.quote.base_url": "services.quote.base_url",
		"Config.Log.File.Path":           "log.file.path",
		"Config":                         "config",
	}

	for in, want := range tests {
		assert.Equal(t, want, keyFromNamespace(in), in)
	}
}
