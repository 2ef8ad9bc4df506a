package models

import "time"

// DownloadLog represents a video download attempt
type DownloadLog struct {
	ID                int64
	RequestID         string
	UserIP            string
	VideoURL          string
	VideoTitle        string
	VideoUploader     string
	DownloadedFormat  string
	DownloadedQuality string
	FileSize          string
	Status            Status
	Timestamp         time.Time
	UserAgent         string
}
