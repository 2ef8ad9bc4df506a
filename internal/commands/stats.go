package commands

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artur/tubegrab/internal/database/repository"
)

const defaultStatsLimit = 10

// NewStatsCommand creates the 'stats' subcommand that reports over the audit tables
// Usage: tubegrab stats [--config tubegrab.toml] [--limit 10]
func NewStatsCommand() *cobra.Command {
	var configPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the audit log",
		Long: `Print read-only statistics from the audit database:
attempts by status, the most downloaded videos and the most common info lookup errors.

Example:
  tubegrab stats --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatsCommand(cmd.OutOrStdout(), configPath, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", DefaultConfigFile, configFlagDescription)
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultStatsLimit, "Number of rows in top lists")

	return cmd
}

func runStatsCommand(out io.Writer, configPath string, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	cfg, logger, err := loadRuntime(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", cfg.Database.Path)
	}

	db, err := connectDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return writeStats(out, db.DB, limit)
}

// writeStats renders the audit summary as aligned text tables.
func writeStats(out io.Writer, db *sql.DB, limit int) error {
	stats := repository.NewStatsRepository(db)
	downloads := repository.NewDownloadLogRepository(db)

	total, err := downloads.GetTotalDownloads()
	if err != nil {
		return fmt.Errorf("failed to count downloads: %w", err)
	}
	downloadCounts, err := stats.GetDownloadStatusCounts()
	if err != nil {
		return fmt.Errorf("failed to count download statuses: %w", err)
	}
	infoCounts, err := stats.GetInfoStatusCounts()
	if err != nil {
		return fmt.Errorf("failed to count info statuses: %w", err)
	}
	popular, err := downloads.GetPopularVideos(limit)
	if err != nil {
		return err
	}
	topErrors, err := stats.GetTopErrors(limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Successful downloads:\t%d\n\n", total)

	fmt.Fprintln(tw, "Download attempts by status")
	for _, c := range downloadCounts {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Status, c.Count)
	}

	fmt.Fprintln(tw, "\nInfo lookups by status")
	for _, c := range infoCounts {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Status, c.Count)
	}

	fmt.Fprintln(tw, "\nMost downloaded videos")
	for i, v := range popular {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\t%d\n", i+1, v.VideoTitle, v.VideoURL, v.DownloadCount)
	}

	fmt.Fprintln(tw, "\nMost common info errors")
	for _, e := range topErrors {
		fmt.Fprintf(tw, "  %s\t%d\n", e.Message, e.Count)
	}

	return tw.Flush()
}
