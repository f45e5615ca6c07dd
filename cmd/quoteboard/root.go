package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quoteboard/internal/adapters/clients"
	"github.com/jsamuelsen/quoteboard/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quoteboard/internal/platform/config"
	"github.com/jsamuelsen/quoteboard/internal/platform/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	profile   string
	configDir string
	verbose   bool
}

// newRootCmd builds the command tree. Running the root without a
// subcommand serves the board.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "quoteboard",
		Short: "A board of Ron Swanson quotes.",
		Long: `quoteboard fetches quotes from a remote endpoint, shows the current one
and keeps a list of the quotes you saved for as long as the process runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.profile, "profile", "p", profile, "configuration profile, loaded from <config-dir>/<profile>.yaml")
	flags.StringVar(&opts.configDir, "config-dir", "configs", "directory holding base.yaml and the profile files")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newServeCmd(opts),
		newQuoteCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// loadConfig loads and validates the configuration (fail fast).
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configDir, o.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if o.verbose {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}

// openLogger builds the service logger from cfg. The closer flushes the log file.
func openLogger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer) {
	return logging.Open(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, w)
}

// newQuoteSource builds the instrumented client and the quote source on top of it.
func newQuoteSource(cfg *config.Config, logger *slog.Logger) (*acl.QuoteSource, error) {
	quote := cfg.Services.Quote

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     quote.BaseURL,
		ServiceName: quote.Name,
		Timeout:     cfg.Client.Timeout,
		UserAgent:   cfg.Client.UserAgent,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	return acl.NewQuoteSource(acl.QuoteSourceConfig{
		Client: httpClient,
		Path:   quote.Path,
		Logger: logger,
	}), nil
}
