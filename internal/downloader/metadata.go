package downloader

// RawFormat is a single format descriptor as reported by the backend.
// Every field is optional.
type RawFormat struct {
	FormatID       *string  `json:"format_id"`
	Ext            *string  `json:"ext"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
	Height         *int     `json:"height"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	FPS            *float64 `json:"fps"`
}

// RawInfo is the video metadata as reported by the backend.
type RawInfo struct {
	ID          *string     `json:"id"`
	Title       *string     `json:"title"`
	Duration    *float64    `json:"duration"`
	Thumbnail   *string     `json:"thumbnail"`
	Uploader    *string     `json:"uploader"`
	ViewCount   *int64      `json:"view_count"`
	UploadDate  *string     `json:"upload_date"`
	Description *string     `json:"description"`
	Formats     []RawFormat `json:"formats"`
}

// HasVideo reports whether the descriptor carries a video track.
// A missing codec is treated as unknown, not as absent.
func (f RawFormat) HasVideo() bool {
	return f.VCodec == nil || *f.VCodec != "none"
}

// HasAudio reports whether the descriptor carries an audio track.
func (f RawFormat) HasAudio() bool {
	return f.ACodec == nil || *f.ACodec != "none"
}

// ExtOr returns the container extension or def when it is missing.
func (f RawFormat) ExtOr(def string) string {
	return StringOr(f.Ext, def)
}

// Size returns the exact file size, falling back to the approximate one.
// Zero means the size is unknown.
func (f RawFormat) Size() int64 {
	if f.Filesize != nil && *f.Filesize > 0 {
		return int64(*f.Filesize)
	}
	if f.FilesizeApprox != nil && *f.FilesizeApprox > 0 {
		return int64(*f.FilesizeApprox)
	}
	return 0
}

// StringOr dereferences p, returning def for nil.
func StringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
