package repository

import (
	"database/sql"
	"fmt"

	"github.com/artur/tubegrab/internal/database/models"
)

// InfoRequestRepository handles info lookup persistence
type InfoRequestRepository struct {
	db *sql.DB
}

// NewInfoRequestRepository creates a new InfoRequestRepository
func NewInfoRequestRepository(db *sql.DB) *InfoRequestRepository {
	return &InfoRequestRepository{db: db}
}

// Record appends an info lookup and fills in its ID and timestamp
func (r *InfoRequestRepository) Record(entry *models.VideoInfoRequest) error {
	entry.Timestamp = stamp(entry.Timestamp)

	query := `
		INSERT INTO video_info_requests
		(request_id, user_ip, video_url, status, error_message, timestamp, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query,
		entry.RequestID,
		entry.UserIP,
		entry.VideoURL,
		string(entry.Status),
		nullString(entry.ErrorMessage),
		entry.Timestamp,
		nullString(entry.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("failed to record info request: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// ListRecent returns the latest info lookups, newest first
func (r *InfoRequestRepository) ListRecent(limit int) ([]models.VideoInfoRequest, error) {
	query := `
		SELECT id, request_id, user_ip, video_url, status, error_message, timestamp, user_agent
		FROM video_info_requests
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list info requests: %w", err)
	}
	defer rows.Close()

	var entries []models.VideoInfoRequest
	for rows.Next() {
		var e models.VideoInfoRequest
		var errorMessage, userAgent sql.NullString
		var status string
		if err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.UserIP,
			&e.VideoURL,
			&status,
			&errorMessage,
			&e.Timestamp,
			&userAgent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan info request: %w", err)
		}
		e.Status = models.Status(status)
		e.ErrorMessage = errorMessage.String
		e.UserAgent = userAgent.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
