// Package commands implements the tubegrab CLI commands
package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/artur/tubegrab/internal/config"
	"github.com/artur/tubegrab/internal/database"
	"github.com/artur/tubegrab/internal/logging"
)

// DefaultConfigFile is read when --config is not given. A missing file means defaults.
const DefaultConfigFile = "tubegrab.toml"

const configFlagDescription = "Path to TOML config file"

// loadRuntime reads configuration and builds the root logger.
func loadRuntime(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// connectDatabase opens the audit store as is, without touching its schema.
func connectDatabase(cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg.Database.Path, logger.Named("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// openDatabase opens the audit store and brings its schema up to date.
func openDatabase(cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	db, err := connectDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
