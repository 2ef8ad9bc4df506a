package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the 'migrate' subcommand that only prepares the audit schema
// Usage: tubegrab migrate [--config tubegrab.toml]
func NewMigrateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the audit database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateCommand(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", DefaultConfigFile, configFlagDescription)

	return cmd
}

func runMigrateCommand(configPath string) error {
	cfg, logger, err := loadRuntime(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("Database ready: %s\n", cfg.Database.Path)
	return nil
}
