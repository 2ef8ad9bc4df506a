package downloader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
)

// YouTubeExtractor talks to YouTube directly, without an external binary.
type YouTubeExtractor struct {
	client youtube.Client
	logger *zap.Logger
}

func NewYouTubeExtractor(logger *zap.Logger) *YouTubeExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTubeExtractor{
		client: youtube.Client{},
		logger: logger,
	}
}

func (d *YouTubeExtractor) ExtractInfo(ctx context.Context, url string) (*RawInfo, error) {
	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, d.failure(ctx, "extract", url, err)
	}
	return videoToRawInfo(video), nil
}

func (d *YouTubeExtractor) Download(ctx context.Context, url, formatID, dir string) (*RawInfo, error) {
	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, d.failure(ctx, "download", url, err)
	}

	format := findFormat(video.Formats, formatID)
	if format == nil {
		return nil, &ExtractionError{
			Op:      "download",
			URL:     url,
			Message: fmt.Sprintf("Requested format %q is not available", formatID),
		}
	}

	stream, _, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, d.failure(ctx, "download", url, err)
	}
	defer stream.Close()

	ext, _, _ := parseMimeType(format.MimeType, format.AudioChannels)
	path := filepath.Join(dir, sanitizeFilename(video.Title)+"."+ext)

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, stream); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to download video: %w", err)
	}

	d.logger.Debug("downloaded",
		zap.String("video_id", video.ID),
		zap.Int("itag", format.ItagNo),
		zap.String("path", path))

	return videoToRawInfo(video), nil
}

func (d *YouTubeExtractor) failure(ctx context.Context, op, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("youtube %s interrupted: %w", op, ctxErr)
	}
	d.logger.Warn("youtube refused url",
		zap.String("op", op),
		zap.String("url", url),
		zap.Error(err))
	return &ExtractionError{Op: op, URL: url, Message: err.Error(), Err: err}
}

func findFormat(formats youtube.FormatList, formatID string) *youtube.Format {
	itag, err := strconv.Atoi(formatID)
	if err != nil {
		return nil
	}
	for i := range formats {
		if formats[i].ItagNo == itag {
			return &formats[i]
		}
	}
	return nil
}

func videoToRawInfo(video *youtube.Video) *RawInfo {
	info := &RawInfo{
		ID:          stringPtr(video.ID),
		Title:       stringPtr(video.Title),
		Uploader:    stringPtr(video.Author),
		Description: stringPtr(video.Description),
		Formats:     make([]RawFormat, 0, len(video.Formats)),
	}

	if video.Duration > 0 {
		seconds := video.Duration.Seconds()
		info.Duration = &seconds
	}

	views := int64(video.Views)
	info.ViewCount = &views

	if !video.PublishDate.IsZero() {
		info.UploadDate = stringPtr(video.PublishDate.Format("20060102"))
	}

	// Thumbnails are listed smallest first.
	if n := len(video.Thumbnails); n > 0 {
		info.Thumbnail = stringPtr(video.Thumbnails[n-1].URL)
	}

	for _, f := range video.Formats {
		info.Formats = append(info.Formats, formatToRaw(f))
	}

	return info
}

func formatToRaw(f youtube.Format) RawFormat {
	ext, vcodec, acodec := parseMimeType(f.MimeType, f.AudioChannels)

	raw := RawFormat{
		FormatID: stringPtr(strconv.Itoa(f.ItagNo)),
		Ext:      stringPtr(ext),
		VCodec:   stringPtr(vcodec),
		ACodec:   stringPtr(acodec),
	}

	if f.Height > 0 {
		height := f.Height
		raw.Height = &height
	}
	if f.ContentLength > 0 {
		size := float64(f.ContentLength)
		raw.Filesize = &size
	}
	if f.FPS > 0 {
		fps := float64(f.FPS)
		raw.FPS = &fps
	}

	return raw
}

// parseMimeType splits `video/mp4; codecs="avc1.42001E, mp4a.40.2"` into
// the container extension and the video/audio codec ids ("none" when absent).
func parseMimeType(mimeType string, audioChannels int) (ext, vcodec, acodec string) {
	vcodec, acodec = "none", "none"

	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return defaultExt, vcodec, acodec
	}

	kind, sub, _ := strings.Cut(mediaType, "/")
	ext = sub
	if ext == "" {
		ext = defaultExt
	}
	if kind == "audio" && sub == "mp4" {
		ext = "m4a"
	}

	var codecs []string
	for _, c := range strings.Split(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}

	switch kind {
	case "video":
		vcodec = Unknown
		if len(codecs) > 0 {
			vcodec = codecs[0]
		}
		if audioChannels > 0 {
			acodec = Unknown
			if len(codecs) > 1 {
				acodec = codecs[1]
			}
		}
	case "audio":
		if len(codecs) > 0 {
			acodec = codecs[0]
		}
	}

	return ext, vcodec, acodec
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)

	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "video"
	}
	return name
}

func stringPtr(s string) *string {
	return &s
}
