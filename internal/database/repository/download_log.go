package repository

import (
	"database/sql"
	"fmt"

	"github.com/artur/tubegrab/internal/database/models"
)

// DownloadLogRepository handles download attempt persistence
type DownloadLogRepository struct {
	db *sql.DB
}

// NewDownloadLogRepository creates a new DownloadLogRepository
func NewDownloadLogRepository(db *sql.DB) *DownloadLogRepository {
	return &DownloadLogRepository{db: db}
}

// Record appends a download attempt and fills in its ID and timestamp
func (r *DownloadLogRepository) Record(entry *models.DownloadLog) error {
	entry.Timestamp = stamp(entry.Timestamp)

	query := `
		INSERT INTO download_logs
		(request_id, user_ip, video_url, video_title, video_uploader, downloaded_format,
		 downloaded_quality, file_size, status, timestamp, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query,
		entry.RequestID,
		entry.UserIP,
		entry.VideoURL,
		nullString(entry.VideoTitle),
		nullString(entry.VideoUploader),
		entry.DownloadedFormat,
		nullString(entry.DownloadedQuality),
		nullString(entry.FileSize),
		string(entry.Status),
		entry.Timestamp,
		nullString(entry.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// GetTotalDownloads returns the number of successful downloads
func (r *DownloadLogRepository) GetTotalDownloads() (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM download_logs WHERE status = ?`
	err := r.db.QueryRow(query, string(models.StatusSuccess)).Scan(&count)
	return count, err
}

// PopularVideo represents a video with download count
type PopularVideo struct {
	VideoURL      string
	VideoTitle    string
	DownloadCount int64
}

// GetPopularVideos returns the most downloaded videos (top N)
func (r *DownloadLogRepository) GetPopularVideos(limit int) ([]PopularVideo, error) {
	query := `
		SELECT video_url, MAX(video_title), COUNT(*) as download_count
		FROM download_logs
		WHERE status = ?
		GROUP BY video_url
		ORDER BY download_count DESC, video_url
		LIMIT ?
	`

	rows, err := r.db.Query(query, string(models.StatusSuccess), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular videos: %w", err)
	}
	defer rows.Close()

	var videos []PopularVideo
	for rows.Next() {
		var video PopularVideo
		var title sql.NullString
		if err := rows.Scan(&video.VideoURL, &title, &video.DownloadCount); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		video.VideoTitle = title.String
		videos = append(videos, video)
	}

	return videos, rows.Err()
}

// ListRecent returns the latest download attempts, newest first
func (r *DownloadLogRepository) ListRecent(limit int) ([]models.DownloadLog, error) {
	query := `
		SELECT id, request_id, user_ip, video_url, video_title, video_uploader, downloaded_format,
		       downloaded_quality, file_size, status, timestamp, user_agent
		FROM download_logs
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var entries []models.DownloadLog
	for rows.Next() {
		var e models.DownloadLog
		var title, uploader, quality, size, userAgent sql.NullString
		var status string
		if err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.UserIP,
			&e.VideoURL,
			&title,
			&uploader,
			&e.DownloadedFormat,
			&quality,
			&size,
			&status,
			&e.Timestamp,
			&userAgent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		e.VideoTitle = title.String
		e.VideoUploader = uploader.String
		e.DownloadedQuality = quality.String
		e.FileSize = size.String
		e.Status = models.Status(status)
		e.UserAgent = userAgent.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
