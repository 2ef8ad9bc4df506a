package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/artur/tubegrab/internal/database/models"
	"github.com/artur/tubegrab/internal/downloader"
	"github.com/artur/tubegrab/internal/notify"
)

const chunkSize = 4096

// DownloadAuditor stores download audit rows.
type DownloadAuditor interface {
	Record(entry *models.DownloadLog) error
}

// DownloadOptions tunes the download handler.
type DownloadOptions struct {
	// TempDir is the parent of per-request scratch directories. Empty means os.TempDir().
	TempDir string
	// AuditRejected writes audit rows for requests refused before any work.
	AuditRejected bool
}

type downloadRequest struct {
	URL      *string `json:"url"`
	FormatID *string `json:"format_id"`
	Quality  *string `json:"quality"`
}

// downloadJob carries one request through fetch, audit and streaming.
type downloadJob struct {
	url      string
	formatID string
	quality  string
	title    string
	uploader string
	dir      string
	file     string
	size     int64
	rejected bool
}

// cleanup removes the scratch directory and everything in it. Safe to call twice.
func (j *downloadJob) cleanup(logger *zap.Logger) {
	if j.dir == "" {
		return
	}
	if err := os.RemoveAll(j.dir); err != nil {
		logger.Warn("failed to remove temp dir", zap.String("dir", j.dir), zap.Error(err))
	}
	j.dir = ""
}

// DownloadHandler serves POST /download_video.
type DownloadHandler struct {
	extractor downloader.Extractor
	audit     DownloadAuditor
	notifier  notify.Notifier
	logger    *zap.Logger
	opts      DownloadOptions
}

func NewDownloadHandler(ex downloader.Extractor, audit DownloadAuditor, notifier notify.Notifier, logger *zap.Logger, opts DownloadOptions) *DownloadHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadHandler{
		extractor: ex,
		audit:     audit,
		notifier:  notifier,
		logger:    logger,
		opts:      opts,
	}
}

func (h *DownloadHandler) Route() (method, pattern string) {
	return http.MethodPost, "/download_video"
}

func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := clientFromRequest(r)

	job := &downloadJob{}
	defer job.cleanup(h.logger)

	out := h.run(r, job)

	fields := []zap.Field{
		zap.String("request_id", c.RequestID),
		zap.String("ip", c.IP),
		zap.String("url", job.url),
		zap.String("format_id", job.formatID),
	}
	out.log(h.logger, "download", fields...)

	if job.rejected && !h.opts.AuditRejected {
		h.logger.Warn("rejected download not audited", fields...)
	} else {
		h.record(c, job, out)
	}
	if out.kind == outcomeInternalError {
		h.notifier.InternalError("download", job.url, out.detail)
	}

	if !out.ok() {
		writeError(w, out.status, out.message)
		return
	}
	h.stream(w, job, fields)
}

func (h *DownloadHandler) run(r *http.Request, job *downloadJob) (out outcome) {
	defer func() {
		if p := recover(); p != nil {
			job.cleanup(h.logger)
			out = recovered(p)
		}
	}()

	var req downloadRequest
	if err := decodeBody(r, &req); err != nil {
		job.rejected = true
		return clientError(msgInvalidBody, "invalid request body: "+err.Error())
	}
	if req.URL != nil {
		job.url = strings.TrimSpace(*req.URL)
	}
	if req.FormatID != nil {
		job.formatID = strings.TrimSpace(*req.FormatID)
	}
	if req.Quality != nil {
		job.quality = *req.Quality
	}

	if job.url == "" || job.formatID == "" {
		job.rejected = true
		return clientError(msgDownloadFields, "URL and format_id required")
	}
	if !IsValidYouTubeURL(job.url) {
		job.rejected = true
		return clientError(msgInvalidURL, auditInvalidURL)
	}

	dir, err := os.MkdirTemp(h.opts.TempDir, "tubegrab-*")
	if err != nil {
		return internalError(fmt.Sprintf("failed to create temp dir: %v", err))
	}
	job.dir = dir

	info, err := h.extractor.Download(r.Context(), job.url, job.formatID, dir)
	if err != nil {
		job.cleanup(h.logger)
		return extractorFailure(err, msgDownloadFailPrefix)
	}
	if info != nil {
		job.title = downloader.StringOr(info.Title, "")
		job.uploader = downloader.StringOr(info.Uploader, "")
	}

	file, err := firstRegularFile(dir)
	if err != nil {
		job.cleanup(h.logger)
		return internalError(fmt.Sprintf("failed to read temp dir: %v", err))
	}
	if file == "" {
		job.cleanup(h.logger)
		return missingOutput(msgFileNotDownloaded)
	}

	st, err := os.Stat(file)
	if err != nil {
		job.cleanup(h.logger)
		return internalError(fmt.Sprintf("failed to stat output: %v", err))
	}
	job.file = file
	job.size = st.Size()

	return succeeded()
}

func (h *DownloadHandler) record(c client, job *downloadJob, out outcome) {
	entry := &models.DownloadLog{
		RequestID:        c.RequestID,
		UserIP:           c.IP,
		VideoURL:         job.url,
		VideoTitle:       orUnknown(job.title),
		VideoUploader:    orUnknown(job.uploader),
		DownloadedFormat: job.formatID,
		Status:           out.audit,
		UserAgent:        c.UserAgent,
	}
	if out.ok() {
		entry.DownloadedQuality = orUnknown(job.quality)
		entry.FileSize = downloader.FormatFileSize(job.size)
	} else {
		entry.DownloadedQuality = job.quality
	}

	if err := h.audit.Record(entry); err != nil {
		h.logger.Error("failed to write audit row",
			zap.String("request_id", c.RequestID),
			zap.Error(err))
	}
}

func (h *DownloadHandler) stream(w http.ResponseWriter, job *downloadJob, fields []zap.Field) {
	f, err := os.Open(job.file)
	if err != nil {
		h.logger.Error("failed to open download", append(fields, zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", contentDisposition(filepath.Base(job.file)))
	w.Header().Set("Content-Length", strconv.FormatInt(job.size, 10))
	w.WriteHeader(http.StatusOK)

	n, err := copyChunks(w, f)
	if err != nil {
		h.logger.Warn("download stream interrupted",
			append(fields, zap.Int64("written", n), zap.Error(err))...)
	}
}

// firstRegularFile returns the first regular file in dir, or "" if there is none.
func firstRegularFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}

// copyChunks copies r to w in fixed-size chunks.
func copyChunks(w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// contentDisposition builds an attachment header. Non-ASCII names also get
// an RFC 5987 filename* parameter.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '_'
		}
		return r
	}, name)

	v := fmt.Sprintf("attachment; filename=%q", fallback)
	if fallback != name {
		v += "; filename*=UTF-8''" + encodeExtValue(name)
	}
	return v
}

// encodeExtValue percent-encodes every byte outside the RFC 5987 attr-char set.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}

func orUnknown(s string) string {
	if s == "" {
		return downloader.Unknown
	}
	return s
}
