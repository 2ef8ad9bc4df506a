package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

const outputTemplate = "%(title)s.%(ext)s"

// YtdlpExtractor drives the yt-dlp executable.
type YtdlpExtractor struct {
	executable string
	logger     *zap.Logger
}

func NewYtdlpExtractor(executable string, logger *zap.Logger) *YtdlpExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YtdlpExtractor{
		executable: executable,
		logger:     logger,
	}
}

func (e *YtdlpExtractor) command() *ytdlp.Command {
	cmd := ytdlp.New().NoPlaylist()
	if e.executable != "" {
		cmd = cmd.SetExecutable(e.executable)
	}
	return cmd
}

func (e *YtdlpExtractor) ExtractInfo(ctx context.Context, url string) (*RawInfo, error) {
	e.logger.Debug("extracting info", zap.String("url", url))

	result, err := e.command().
		SkipDownload().
		PrintJSON().
		Run(ctx, url)
	if err != nil {
		return nil, e.failure(ctx, "extract", url, result, err)
	}

	return decodeInfo(result.Stdout)
}

func (e *YtdlpExtractor) Download(ctx context.Context, url, formatID, dir string) (*RawInfo, error) {
	e.logger.Debug("downloading",
		zap.String("url", url),
		zap.String("format_id", formatID),
		zap.String("dir", dir))

	result, err := e.command().
		Format(formatID).
		Output(filepath.Join(dir, outputTemplate)).
		PrintJSON().
		Run(ctx, url)
	if err != nil {
		return nil, e.failure(ctx, "download", url, result, err)
	}

	return decodeInfo(result.Stdout)
}

// failure turns a failed run into an ExtractionError when yt-dlp reported
// why it could not service the URL. Anything else is an execution failure.
func (e *YtdlpExtractor) failure(ctx context.Context, op, url string, result *ytdlp.Result, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("yt-dlp %s interrupted: %w", op, ctxErr)
	}

	if result != nil {
		if msg := errorMessage(result.Stderr); msg != "" {
			e.logger.Warn("yt-dlp refused url",
				zap.String("op", op),
				zap.String("url", url),
				zap.String("message", msg))
			return &ExtractionError{Op: op, URL: url, Message: msg, Err: err}
		}
	}

	return fmt.Errorf("failed to run yt-dlp %s: %w", op, err)
}

// errorMessage picks the ERROR lines out of yt-dlp stderr, falling back to
// the whole trimmed output.
func errorMessage(stderr string) string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	return strings.TrimSpace(stderr)
}

// decodeInfo parses the first JSON object line printed by yt-dlp.
func decodeInfo(stdout string) (*RawInfo, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var info RawInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
		}
		return &info, nil
	}

	return nil, errors.New("yt-dlp printed no metadata")
}
