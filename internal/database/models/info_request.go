package models

import "time"

// VideoInfoRequest represents a metadata lookup attempt
type VideoInfoRequest struct {
	ID           int64
	RequestID    string
	UserIP       string
	VideoURL     string
	Status       Status
	ErrorMessage string
	Timestamp    time.Time
	UserAgent    string
}
