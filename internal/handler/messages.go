package handler

import "strings"

const (
	msgURLRequired         = "URL is required"
	msgDownloadFields      = "URL and format_id are required"
	msgInvalidURL          = "Invalid YouTube URL. Only YouTube links are supported."
	msgInvalidBody         = "Invalid request body"
	msgPrivateVideo        = "This video is private. Private videos cannot be downloaded."
	msgVideoUnavailable    = "Video is unavailable or has been removed."
	msgRegionBlocked       = "This video is blocked in your region."
	msgInfoFailedPrefix    = "Failed to fetch video info: "
	msgDownloadFailPrefix  = "Failed to download video: "
	msgFileNotDownloaded   = "File was not downloaded"
	msgInternalServerError = "Internal server error"

	auditURLRequired = "URL required"
	auditInvalidURL  = "invalid URL"
)

// capabilityMessage maps an extractor failure onto a curated message,
// falling back to prefix followed by the raw detail.
func capabilityMessage(detail, prefix string) string {
	switch {
	case strings.Contains(detail, "Private video"):
		return msgPrivateVideo
	case strings.Contains(detail, "Video unavailable"):
		return msgVideoUnavailable
	case strings.Contains(strings.ToLower(detail), "blocked"):
		return msgRegionBlocked
	default:
		return prefix + detail
	}
}
