package downloader

import (
	"fmt"
	"sort"
)

const (
	// MinHeight is the lowest vertical resolution listed as a regular format.
	MinHeight = 144

	// Unknown is rendered for sizes and durations the backend did not report.
	Unknown = "unknown"

	defaultExt      = "mp4"
	standardQuality = "Standard"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// Format is a client-facing format entry.
type Format struct {
	FormatID      *string  `json:"format_id"`
	Ext           string   `json:"ext"`
	Height        *int     `json:"height"`
	Quality       string   `json:"quality"`
	Filesize      string   `json:"filesize"`
	FilesizeBytes *int64   `json:"filesize_bytes"`
	FPS           *float64 `json:"fps"`
	VCodec        *string  `json:"vcodec"`
	ACodec        *string  `json:"acodec"`
}

// NormalizeFormats keeps descriptors carrying both audio and video at or above
// MinHeight, drops later duplicates of the same (height, ext) pair and sorts
// the result by height, tallest first. When nothing qualifies, the first
// audio+video descriptor is returned on its own regardless of height.
func NormalizeFormats(raw []RawFormat) []Format {
	formats := make([]Format, 0, len(raw))
	seen := make(map[string]struct{})

	for _, f := range raw {
		if !f.HasVideo() || !f.HasAudio() {
			continue
		}
		if f.Height == nil || *f.Height < MinHeight {
			continue
		}

		key := fmt.Sprintf("%dp_%s", *f.Height, f.ExtOr(defaultExt))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		formats = append(formats, toFormat(f))
	}

	sort.SliceStable(formats, func(i, j int) bool {
		return *formats[i].Height > *formats[j].Height
	})

	if len(formats) == 0 {
		for _, f := range raw {
			if f.HasVideo() && f.HasAudio() {
				formats = append(formats, toFormat(f))
				break
			}
		}
	}

	return formats
}

func toFormat(f RawFormat) Format {
	quality := standardQuality
	if f.Height != nil {
		quality = fmt.Sprintf("%dp", *f.Height)
	}

	var sizeBytes *int64
	if size := f.Size(); size > 0 {
		sizeBytes = &size
	}

	return Format{
		FormatID:      f.FormatID,
		Ext:           f.ExtOr(defaultExt),
		Height:        f.Height,
		Quality:       quality,
		Filesize:      FormatFileSize(f.Size()),
		FilesizeBytes: sizeBytes,
		FPS:           f.FPS,
		VCodec:        f.VCodec,
		ACodec:        f.ACodec,
	}
}

// FormatFileSize renders a byte count with one decimal in the largest unit
// that keeps the value below 1024.
func FormatFileSize(size int64) string {
	if size <= 0 {
		return Unknown
	}

	value := float64(size)
	for _, unit := range sizeUnits {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f TB", value)
}
