// Package main provides the CLI entry point for tubegrab, a YouTube info and
// download API with an append-only audit log.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artur/tubegrab/internal/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tubegrab",
		Short: "YouTube video info and download API",
		Long: `tubegrab serves metadata lookups and single-format downloads for YouTube URLs
over HTTP, recording every attempt in an append-only SQLite audit log.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
