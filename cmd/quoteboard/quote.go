package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Fetch one quote and print it",
		Long: `Fetches a single quote through the same client the service uses and
prints it. Exits non-zero when the quote source fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if !opts.verbose {
				cfg.Log.Level = "warn"
			}

			cfg.Log.File.Enabled = false

			logger, closer := openLogger(cfg, cmd.ErrOrStderr())
			defer closer.Close()

			source, err := newQuoteSource(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.Timeout)
			defer cancel()

			quote, err := source.FetchQuote(ctx)
			if err != nil {
				return fmt.Errorf("fetching quote: %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan, color.Bold).Fprintf(out, "%q\n", quote.String())
			color.New(color.Faint).Fprintf(out, "  %s\n", cfg.Services.Quote.Name)

			return nil
		},
	}
}
