package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/artur/tubegrab/internal/database/models"
	"github.com/artur/tubegrab/internal/downloader"
	"github.com/artur/tubegrab/internal/notify"
)

const (
	unknownTitle    = "Unknown title"
	unknownUploader = "Unknown"
)

// InfoAuditor stores info lookup audit rows.
type InfoAuditor interface {
	Record(entry *models.VideoInfoRequest) error
}

// VideoInfo is the metadata returned to the client.
type VideoInfo struct {
	Title           string              `json:"title"`
	Duration        string              `json:"duration"`
	DurationSeconds *float64            `json:"duration_seconds"`
	Thumbnail       *string             `json:"thumbnail"`
	Uploader        string              `json:"uploader"`
	ViewCount       int64               `json:"view_count"`
	UploadDate      *string             `json:"upload_date"`
	Description     string              `json:"description"`
	Formats         []downloader.Format `json:"formats"`
}

type infoRequest struct {
	URL *string `json:"url"`
}

type infoResponse struct {
	Success bool       `json:"success"`
	Data    *VideoInfo `json:"data"`
}

// InfoHandler serves POST /get_video_info.
type InfoHandler struct {
	extractor downloader.Extractor
	audit     InfoAuditor
	notifier  notify.Notifier
	logger    *zap.Logger
}

func NewInfoHandler(ex downloader.Extractor, audit InfoAuditor, notifier notify.Notifier, logger *zap.Logger) *InfoHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InfoHandler{
		extractor: ex,
		audit:     audit,
		notifier:  notifier,
		logger:    logger,
	}
}

func (h *InfoHandler) Route() (method, pattern string) {
	return http.MethodPost, "/get_video_info"
}

func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := clientFromRequest(r)

	url, payload, out := h.run(r)

	h.record(c, url, out)
	out.log(h.logger, "info lookup",
		zap.String("request_id", c.RequestID),
		zap.String("ip", c.IP),
		zap.String("url", url))
	if out.kind == outcomeInternalError {
		h.notifier.InternalError("info", url, out.detail)
	}

	if !out.ok() {
		writeError(w, out.status, out.message)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{Success: true, Data: payload})
}

func (h *InfoHandler) run(r *http.Request) (url string, payload *VideoInfo, out outcome) {
	defer func() {
		if p := recover(); p != nil {
			payload = nil
			out = recovered(p)
		}
	}()

	var req infoRequest
	if err := decodeBody(r, &req); err != nil {
		return "", nil, clientError(msgInvalidBody, "invalid request body: "+err.Error())
	}
	if req.URL == nil || strings.TrimSpace(*req.URL) == "" {
		return "", nil, clientError(msgURLRequired, auditURLRequired)
	}

	url = strings.TrimSpace(*req.URL)
	if !IsValidYouTubeURL(url) {
		return url, nil, clientError(msgInvalidURL, auditInvalidURL)
	}

	raw, err := h.extractor.ExtractInfo(r.Context(), url)
	if err != nil {
		return url, nil, extractorFailure(err, msgInfoFailedPrefix)
	}
	if raw == nil {
		return url, nil, internalError("extractor returned no metadata")
	}

	return url, buildVideoInfo(raw), succeeded()
}

func (h *InfoHandler) record(c client, url string, out outcome) {
	entry := &models.VideoInfoRequest{
		RequestID: c.RequestID,
		UserIP:    c.IP,
		VideoURL:  url,
		Status:    out.audit,
		UserAgent: c.UserAgent,
	}
	if !out.ok() {
		entry.ErrorMessage = out.detail
	}

	if err := h.audit.Record(entry); err != nil {
		h.logger.Error("failed to write audit row",
			zap.String("request_id", c.RequestID),
			zap.Error(err))
	}
}

func buildVideoInfo(raw *downloader.RawInfo) *VideoInfo {
	info := &VideoInfo{
		Title:           downloader.StringOr(raw.Title, unknownTitle),
		Duration:        formatDuration(raw.Duration),
		DurationSeconds: raw.Duration,
		Thumbnail:       raw.Thumbnail,
		Uploader:        downloader.StringOr(raw.Uploader, unknownUploader),
		UploadDate:      raw.UploadDate,
		Description:     truncateDescription(downloader.StringOr(raw.Description, "")),
		Formats:         downloader.NormalizeFormats(raw.Formats),
	}
	if raw.ViewCount != nil {
		info.ViewCount = *raw.ViewCount
	}
	return info
}
