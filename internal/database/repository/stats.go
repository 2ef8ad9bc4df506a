package repository

import (
	"database/sql"
	"fmt"

	"github.com/artur/tubegrab/internal/database/models"
)

// StatusCount represents how many audit rows ended with a status
type StatusCount struct {
	Status models.Status
	Count  int64
}

// ErrorCount represents how often an info lookup failed with a message
type ErrorCount struct {
	Message string
	Count   int64
}

// StatsRepository aggregates the audit tables
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetDownloadStatusCounts returns download attempts grouped by status
func (r *StatsRepository) GetDownloadStatusCounts() ([]StatusCount, error) {
	return r.statusCounts(`SELECT status, COUNT(*) FROM download_logs GROUP BY status ORDER BY status`)
}

// GetInfoStatusCounts returns info lookups grouped by status
func (r *StatsRepository) GetInfoStatusCounts() ([]StatusCount, error) {
	return r.statusCounts(`SELECT status, COUNT(*) FROM video_info_requests GROUP BY status ORDER BY status`)
}

func (r *StatsRepository) statusCounts(query string) ([]StatusCount, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	defer rows.Close()

	var results []StatusCount
	for rows.Next() {
		var item StatusCount
		var status string
		if err := rows.Scan(&status, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		item.Status = models.Status(status)
		results = append(results, item)
	}

	return results, rows.Err()
}

// GetTopErrors returns the most frequent info lookup error messages (top N)
func (r *StatsRepository) GetTopErrors(limit int) ([]ErrorCount, error) {
	query := `
		SELECT error_message, COUNT(*) as count
		FROM video_info_requests
		WHERE error_message IS NOT NULL
		GROUP BY error_message
		ORDER BY count DESC, error_message
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top errors: %w", err)
	}
	defer rows.Close()

	var results []ErrorCount
	for rows.Next() {
		var item ErrorCount
		if err := rows.Scan(&item.Message, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan error count: %w", err)
		}
		results = append(results, item)
	}

	return results, rows.Err()
}
