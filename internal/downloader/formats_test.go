package downloader

import (
	"reflect"
	"testing"
)

func rawFormat(id, ext, vcodec, acodec string, height int, size float64) RawFormat {
	f := RawFormat{
		FormatID: stringPtr(id),
		Ext:      stringPtr(ext),
		VCodec:   stringPtr(vcodec),
		ACodec:   stringPtr(acodec),
	}
	if height > 0 {
		f.Height = &height
	}
	if size > 0 {
		f.Filesize = &size
	}
	return f
}

func formatIDs(formats []Format) []string {
	ids := make([]string, 0, len(formats))
	for _, f := range formats {
		ids = append(ids, StringOr(f.FormatID, ""))
	}
	return ids
}

func TestNormalizeFormats(t *testing.T) {
	tests := []struct {
		name    string
		raw     []RawFormat
		wantIDs []string
	}{
		{
			name:    "empty input",
			raw:     nil,
			wantIDs: []string{},
		},
		{
			name: "drops audio-only and video-only",
			raw: []RawFormat{
				rawFormat("22", "mp4", "avc1", "mp4a", 720, 0),
				rawFormat("160", "webm", "vp9", "none", 144, 0),
				rawFormat("140", "m4a", "none", "mp4a", 0, 0),
			},
			wantIDs: []string{"22"},
		},
		{
			name: "sorts tallest first",
			raw: []RawFormat{
				rawFormat("18", "mp4", "avc1", "mp4a", 360, 0),
				rawFormat("37", "mp4", "avc1", "mp4a", 1080, 0),
				rawFormat("22", "mp4", "avc1", "mp4a", 720, 0),
			},
			wantIDs: []string{"37", "22", "18"},
		},
		{
			name: "first of a duplicate height and ext wins",
			raw: []RawFormat{
				rawFormat("a", "mp4", "avc1", "mp4a", 720, 0),
				rawFormat("b", "mp4", "avc1", "mp4a", 720, 0),
				rawFormat("c", "webm", "vp9", "opus", 720, 0),
			},
			wantIDs: []string{"a", "c"},
		},
		{
			name: "equal heights keep input order",
			raw: []RawFormat{
				rawFormat("webm", "webm", "vp9", "opus", 480, 0),
				rawFormat("low", "mp4", "avc1", "mp4a", 240, 0),
				rawFormat("mp4", "mp4", "avc1", "mp4a", 480, 0),
			},
			wantIDs: []string{"webm", "mp4", "low"},
		},
		{
			name: "below threshold is excluded when something qualifies",
			raw: []RawFormat{
				rawFormat("tiny", "3gp", "mp4v", "mp4a", 96, 0),
				rawFormat("18", "mp4", "avc1", "mp4a", 360, 0),
			},
			wantIDs: []string{"18"},
		},
		{
			name: "fallback picks first audio+video below threshold",
			raw: []RawFormat{
				rawFormat("vonly", "webm", "vp9", "none", 96, 0),
				rawFormat("tiny", "3gp", "mp4v", "mp4a", 96, 0),
				rawFormat("tiny2", "3gp", "mp4v", "mp4a", 72, 0),
			},
			wantIDs: []string{"tiny"},
		},
		{
			name: "fallback picks descriptor without height",
			raw: []RawFormat{
				rawFormat("noheight", "mp4", "avc1", "mp4a", 0, 0),
			},
			wantIDs: []string{"noheight"},
		},
		{
			name: "no audio+video descriptor at all",
			raw: []RawFormat{
				rawFormat("vonly", "webm", "vp9", "none", 1080, 0),
				rawFormat("aonly", "m4a", "none", "mp4a", 0, 0),
			},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatIDs(NormalizeFormats(tt.raw))
			if !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("NormalizeFormats() ids = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestNormalizeFormats_DisplayFields(t *testing.T) {
	fps := 30.0
	f := rawFormat("22", "mp4", "avc1.64001F", "mp4a.40.2", 720, 52428800)
	f.FPS = &fps

	formats := NormalizeFormats([]RawFormat{f})
	if len(formats) != 1 {
		t.Fatalf("expected 1 format, got %d", len(formats))
	}

	got := formats[0]
	if got.Quality != "720p" {
		t.Errorf("expected quality 720p, got %q", got.Quality)
	}
	if got.Filesize != "50.0 MB" {
		t.Errorf("expected filesize '50.0 MB', got %q", got.Filesize)
	}
	if got.FilesizeBytes == nil || *got.FilesizeBytes != 52428800 {
		t.Errorf("expected filesize_bytes 52428800, got %v", got.FilesizeBytes)
	}
	if got.FPS == nil || *got.FPS != 30 {
		t.Errorf("expected fps 30, got %v", got.FPS)
	}
	if got.Ext != "mp4" || got.Height == nil || *got.Height != 720 {
		t.Errorf("unexpected ext/height: %q %v", got.Ext, got.Height)
	}
}

func TestNormalizeFormats_ApproximateSizeAndDefaults(t *testing.T) {
	height := 480
	approx := 2048.0
	formats := NormalizeFormats([]RawFormat{{Height: &height, FilesizeApprox: &approx}})

	if len(formats) != 1 {
		t.Fatalf("expected 1 format, got %d", len(formats))
	}
	if formats[0].Ext != "mp4" {
		t.Errorf("expected default ext mp4, got %q", formats[0].Ext)
	}
	if formats[0].Filesize != "2.0 KB" {
		t.Errorf("expected approximate size '2.0 KB', got %q", formats[0].Filesize)
	}
}

func TestNormalizeFormats_FallbackQualityLabel(t *testing.T) {
	formats := NormalizeFormats([]RawFormat{rawFormat("x", "mp4", "avc1", "mp4a", 0, 0)})
	if len(formats) != 1 {
		t.Fatalf("expected 1 format, got %d", len(formats))
	}
	if formats[0].Quality != "Standard" {
		t.Errorf("expected quality 'Standard', got %q", formats[0].Quality)
	}
	if formats[0].Height != nil {
		t.Errorf("expected nil height, got %d", *formats[0].Height)
	}
	if formats[0].Filesize != Unknown {
		t.Errorf("expected unknown size, got %q", formats[0].Filesize)
	}
}

func TestNormalizeFormats_Idempotent(t *testing.T) {
	raw := []RawFormat{
		rawFormat("37", "mp4", "avc1", "mp4a", 1080, 0),
		rawFormat("22", "mp4", "avc1", "mp4a", 720, 0),
		rawFormat("43", "webm", "vp8", "vorbis", 360, 0),
	}

	once := NormalizeFormats(raw)

	again := make([]RawFormat, 0, len(once))
	for _, f := range once {
		ext := f.Ext
		again = append(again, RawFormat{
			FormatID: f.FormatID,
			Ext:      &ext,
			VCodec:   f.VCodec,
			ACodec:   f.ACodec,
			Height:   f.Height,
			FPS:      f.FPS,
		})
	}

	twice := NormalizeFormats(again)
	if !reflect.DeepEqual(formatIDs(once), formatIDs(twice)) {
		t.Errorf("normalization not idempotent: %v then %v", formatIDs(once), formatIDs(twice))
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "unknown"},
		{-5, "unknown"},
		{1, "1.0 B"},
		{1023, "1023.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{1099511627776, "1.0 TB"},
		{3 * 1099511627776, "3.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatFileSize(tt.size); got != tt.want {
				t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, got, tt.want)
			}
		})
	}
}
