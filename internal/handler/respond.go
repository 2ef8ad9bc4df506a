package handler

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
)

const maxBodySize = 1 << 20

// client identifies the caller of one request.
type client struct {
	IP        string
	UserAgent string
	RequestID string
}

// clientFromRequest uses X-Forwarded-For as sent when present, otherwise
// the remote address without its port.
func clientFromRequest(r *http.Request) client {
	ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if ip == "" {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}
	if ip == "" {
		ip = "unknown"
	}
	if len(ip) > 45 {
		ip = ip[:45]
	}

	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = ulid.Make().String()
	}

	return client{
		IP:        ip,
		UserAgent: r.UserAgent(),
		RequestID: requestID,
	}
}

// decodeBody reads a JSON object body. An empty body decodes as {}.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
