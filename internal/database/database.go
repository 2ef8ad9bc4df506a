package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// DB is the process-wide handle to the audit log store.
type DB struct {
	*sql.DB
	Logger *zap.Logger
}

// New opens the sqlite database at path, creating its directory if needed.
func New(path string, logger *zap.Logger) (*DB, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows one writer; a single connection also keeps :memory: alive.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	return &DB{DB: sqlDB, Logger: logger}, nil
}

func (db *DB) logger() *zap.Logger {
	if db.Logger == nil {
		return zap.NewNop()
	}
	return db.Logger
}
