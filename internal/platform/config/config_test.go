package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_DefaultValues tests that hardcoded defaults are applied correctly.
// This test doesn't depend on YAML files - it only tests the defaults() function.
func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quoteboard", cfg.App.Name)
	assert.Equal(t, "dev", cfg.App.Version)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultClientCircuitMaxFailures, cfg.Client.CircuitBreaker.MaxFailures)
	assert.Equal(t, DefaultQuoteBaseURL, cfg.Services.Quote.BaseURL)
	assert.Equal(t, DefaultQuotePath, cfg.Services.Quote.Path)
	assert.True(t, cfg.Board.FetchOnStart)
	assert.True(t, cfg.Board.DiscardStaleFetches)

	require.NoError(t, cfg.Validate())
}

// TestLoad_EnvVarOverrides tests that environment variables override defaults.
func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

// TestLoad_EnvVarOverridesUnderscoredKeys tests that keys containing
// underscores can be overridden from the environment.
func TestLoad_EnvVarOverridesUnderscoredKeys(t *testing.T) {
	t.Setenv("APP_SERVICES_QUOTE_BASE_URL", "http://localhost:9999")
	t.Setenv("APP_BOARD_FETCH_ON_START", "false")
	t.Setenv("APP_BOARD_DISCARD_STALE_FETCHES", "false")
	t.Setenv("APP_CLIENT_CIRCUIT_BREAKER_MAX_FAILURES", "2")
	t.Setenv("APP_CLIENT_CIRCUIT_BREAKER_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Services.Quote.BaseURL)
	assert.False(t, cfg.Board.FetchOnStart)
	assert.False(t, cfg.Board.DiscardStaleFetches)
	assert.Equal(t, 2, cfg.Client.CircuitBreaker.MaxFailures)
	assert.True(t, cfg.Client.CircuitBreaker.Enabled)
}

// TestLoad_DurationParsing tests that duration strings are parsed correctly.
func TestLoad_DurationParsing(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, DefaultEventHeartbeat, cfg.Board.EventHeartbeat)
}

// TestLoad_NonExistentProfile tests that a missing profile file doesn't cause errors.
func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "quoteboard", cfg.App.Name)
}

// TestLoadFrom_Precedence tests base < profile < env layering.
func TestLoadFrom_Precedence(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "base.yaml"), `
app:
  environment: dev
server:
  port: 7000
log:
  format: text
`)
	writeFile(t, filepath.Join(dir, "qa.yaml"), `
app:
  environment: qa
server:
  port: 7100
`)
	t.Setenv("APP_SERVER_PORT", "7200")

	cfg, err := LoadFrom(dir, "qa")
	require.NoError(t, err)

	assert.Equal(t, "qa", cfg.App.Environment)
	assert.Equal(t, 7200, cfg.Server.Port)
	assert.Equal(t, "text", cfg.Log.Format)
}

// TestLoadFrom_InvalidYAML tests that parse errors are reported.
func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yaml"), "server: [unclosed")

	_, err := LoadFrom(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading base config")
}

// TestLoad_BoolEnvVar tests that boolean environment variables are parsed correctly.
func TestLoad_BoolEnvVar(t *testing.T) {
	t.Setenv("APP_TELEMETRY_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Telemetry.Enabled)
}

// TestLoad_LogFileDefaults tests that log file defaults are set correctly.
func TestLoad_LogFileDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, "./logs/quoteboard.log", cfg.Log.File.Path)
	assert.Equal(t, DefaultLogFileMaxSizeMB, cfg.Log.File.MaxSizeMB)
	assert.Equal(t, DefaultLogFileMaxBackups, cfg.Log.File.MaxBackups)
	assert.Equal(t, DefaultLogFileMaxAgeDays, cfg.Log.File.MaxAgeDays)
	assert.True(t, cfg.Log.File.Compress)
}

// TestLoad_TelemetryDefaults tests that telemetry defaults are set correctly.
func TestLoad_TelemetryDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "quoteboard", cfg.Telemetry.ServiceName)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRate)
}

// TestLoad_ClientDefaults tests that HTTP client defaults are set correctly.
func TestLoad_ClientDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "quoteboard", cfg.Client.UserAgent)
	assert.False(t, cfg.Client.CircuitBreaker.Enabled, "the breaker is opt-in")
	assert.Equal(t, DefaultClientCircuitMaxFailures, cfg.Client.CircuitBreaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Client.CircuitBreaker.Timeout)
	assert.Equal(t, DefaultClientCircuitHalfOpenLimit, cfg.Client.CircuitBreaker.HalfOpenLimit)
	assert.Equal(t, DefaultTransportMaxIdleConns, cfg.Client.Transport.MaxIdleConns)
	assert.Equal(t, DefaultTransportIdleConnTimeout, cfg.Client.Transport.IdleConnTimeout)
}

// TestDefaults tests that the defaults map contains expected values.
func TestDefaults(t *testing.T) {
	d := defaults()

	assert.Equal(t, "quoteboard", d["app.name"])
	assert.Equal(t, "local", d["app.environment"])
	assert.Equal(t, DefaultServerPort, d["server.port"])
	assert.Equal(t, DefaultQuoteBaseURL, d["services.quote.base_url"])
	assert.Equal(t, true, d["board.discard_stale_fetches"])
}

func TestEnvKeyMapper(t *testing.T) {
	mapper := envKeyMapper([]string{"services.quote.base_url", "server.port"})

	tests := []struct {
		env  string
		want string
	}{
		{"APP_SERVICES_QUOTE_BASE_URL", "services.quote.base_url"},
		{"APP_SERVER_PORT", "server.port"},
		{"APP_UNKNOWN_KEY", "unknown.key"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper(tt.env))
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
