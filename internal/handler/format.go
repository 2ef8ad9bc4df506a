package handler

import (
	"fmt"
	"unicode/utf8"

	"github.com/artur/tubegrab/internal/downloader"
)

const maxDescriptionLen = 200

// formatDuration renders seconds as HH:MM:SS, or MM:SS under an hour.
func formatDuration(seconds *float64) string {
	if seconds == nil || int64(*seconds) <= 0 {
		return downloader.Unknown
	}

	total := int64(*seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// truncateDescription cuts descriptions longer than 200 characters and
// marks the cut with an ellipsis.
func truncateDescription(description string) string {
	if utf8.RuneCountInString(description) <= maxDescriptionLen {
		return description
	}
	return string([]rune(description)[:maxDescriptionLen]) + "..."
}
