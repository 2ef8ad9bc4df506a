package downloader

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by New.
const (
	BackendYtdlp  = "ytdlp"
	BackendNative = "native"
)

// Extractor resolves metadata and media for a video URL.
type Extractor interface {
	// ExtractInfo returns metadata and the list of format descriptors for url.
	ExtractInfo(ctx context.Context, url string) (*RawInfo, error)
	// Download materializes exactly one file for formatID inside dir.
	Download(ctx context.Context, url, formatID, dir string) (*RawInfo, error)
}

// ExtractionError is returned when the backend cannot service a URL
// (private, removed, region blocked, unknown format and so on).
type ExtractionError struct {
	Op      string
	URL     string
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// New builds the extractor for the named backend.
func New(backend, ytdlpPath string, logger *zap.Logger) (Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch backend {
	case "", BackendYtdlp:
		return NewYtdlpExtractor(ytdlpPath, logger.Named("ytdlp")), nil
	case BackendNative:
		return NewYouTubeExtractor(logger.Named("native")), nil
	default:
		return nil, fmt.Errorf("unknown extractor backend %q", backend)
	}
}
