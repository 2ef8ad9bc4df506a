package database

import (
	"fmt"

	"go.uber.org/zap"
)

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	db.logger().Info("running migrations")

	migrations := []string{
		// Download attempts
		`CREATE TABLE IF NOT EXISTS download_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			user_ip VARCHAR(45) NOT NULL,
			video_url TEXT NOT NULL,
			video_title TEXT,
			video_uploader VARCHAR(255),
			downloaded_format VARCHAR(50) NOT NULL,
			downloaded_quality VARCHAR(20),
			file_size VARCHAR(20),
			status VARCHAR(20) NOT NULL DEFAULT 'success' CHECK (status IN ('success', 'failed', 'error')),
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			user_agent TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_download_logs_status ON download_logs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_download_logs_video_url ON download_logs(video_url)`,
		`CREATE INDEX IF NOT EXISTS idx_download_logs_timestamp ON download_logs(timestamp)`,

		// Info lookups
		`CREATE TABLE IF NOT EXISTS video_info_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			user_ip VARCHAR(45) NOT NULL,
			video_url TEXT NOT NULL,
			status VARCHAR(20) NOT NULL CHECK (status IN ('success', 'failed', 'error')),
			error_message TEXT,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			user_agent TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_video_info_requests_status ON video_info_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_video_info_requests_timestamp ON video_info_requests(timestamp)`,

		// Audit rows are append-only
		`CREATE TRIGGER IF NOT EXISTS download_logs_no_update BEFORE UPDATE ON download_logs
		BEGIN SELECT RAISE(ABORT, 'download_logs is append-only'); END`,
		`CREATE TRIGGER IF NOT EXISTS download_logs_no_delete BEFORE DELETE ON download_logs
		BEGIN SELECT RAISE(ABORT, 'download_logs is append-only'); END`,
		`CREATE TRIGGER IF NOT EXISTS video_info_requests_no_update BEFORE UPDATE ON video_info_requests
		BEGIN SELECT RAISE(ABORT, 'video_info_requests is append-only'); END`,
		`CREATE TRIGGER IF NOT EXISTS video_info_requests_no_delete BEFORE DELETE ON video_info_requests
		BEGIN SELECT RAISE(ABORT, 'video_info_requests is append-only'); END`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	db.logger().Info("migrations completed", zap.Int("count", len(migrations)))
	return nil
}
