package main

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			label := color.New(color.FgYellow)
			out := cmd.OutOrStdout()

			for _, row := range [][2]string{
				{"version", Version},
				{"commit", Commit},
				{"built", BuildTime},
				{"go", runtime.Version()},
			} {
				label.Fprintf(out, "%-8s", row[0])
				_, _ = out.Write([]byte(row[1] + "\n"))
			}
		},
	}
}
