package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockHandler implements Handler for testing
type MockHandler struct {
	method  string
	pattern string
	serve   func(w http.ResponseWriter, r *http.Request)
}

func (m *MockHandler) Route() (string, string) {
	return m.method, m.pattern
}

func (m *MockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.serve != nil {
		m.serve(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func TestServer_RegisterHandler(t *testing.T) {
	s := New(Options{}, zap.NewNop())
	require.Empty(t, s.handlers)

	handler1 := &MockHandler{method: http.MethodGet, pattern: "/one"}
	handler2 := &MockHandler{method: http.MethodPost, pattern: "/two"}
	s.RegisterHandler(handler1)
	s.RegisterHandler(handler2)

	require.Len(t, s.handlers, 2)
	assert.Same(t, handler1, s.handlers[0])
	assert.Same(t, handler2, s.handlers[1])
}

func TestServer_Routing(t *testing.T) {
	s := New(Options{}, zap.NewNop())
	s.RegisterHandler(&MockHandler{method: http.MethodPost, pattern: "/get_video_info"})

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"registered route", http.MethodPost, "/get_video_info", http.StatusNoContent},
		{"wrong method", http.MethodGet, "/get_video_info", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestServer_RequestID(t *testing.T) {
	var seen string
	s := New(Options{}, zap.NewNop())
	s.RegisterHandler(&MockHandler{
		method:  http.MethodGet,
		pattern: "/id",
		serve: func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.GetReqID(r.Context())
			w.WriteHeader(http.StatusOK)
		},
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))
	require.Len(t, seen, 26, "generated ids are ULIDs")
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", seen)
	assert.Equal(t, "caller-supplied", rec.Header().Get("X-Request-Id"))
}

func TestServer_RecoversPanics(t *testing.T) {
	s := New(Options{}, zap.NewNop())
	s.RegisterHandler(&MockHandler{
		method:  http.MethodGet,
		pattern: "/panic",
		serve: func(http.ResponseWriter, *http.Request) {
			panic("boom")
		},
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := New(Options{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := New(Options{AllowedOrigins: []string{"http://localhost:5173"}}, zap.NewNop())
	s.RegisterHandler(&MockHandler{method: http.MethodPost, pattern: "/get_video_info"})

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"allowed origin", "http://localhost:5173", "http://localhost:5173"},
		{"foreign origin", "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/get_video_info", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "Content-Type")

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestServer_CORSOnSimpleRequest(t *testing.T) {
	s := New(Options{AllowedOrigins: []string{"http://localhost:5173"}}, zap.NewNop())
	s.RegisterHandler(&MockHandler{method: http.MethodPost, pattern: "/get_video_info"})

	req := httptest.NewRequest(http.MethodPost, "/get_video_info", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_BasePath(t *testing.T) {
	for _, base := range []string{"/api", "api/", "/api/"} {
		t.Run(base, func(t *testing.T) {
			s := New(Options{BasePath: base}, zap.NewNop())
			s.RegisterHandler(&MockHandler{method: http.MethodPost, pattern: "/get_video_info"})

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/get_video_info", nil))
			assert.Equal(t, http.StatusNoContent, rec.Code)

			rec = httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/get_video_info", nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"api", "/api"},
		{"/api/", "/api"},
		{" /v1/api ", "/v1/api"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeBasePath(tt.in))
		})
	}
}

func TestServer_RejectsMalformedRequestID(t *testing.T) {
	var seen string
	s := New(Options{}, zap.NewNop())
	s.RegisterHandler(&MockHandler{
		method:  http.MethodGet,
		pattern: "/id",
		serve: func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.GetReqID(r.Context())
			w.WriteHeader(http.StatusOK)
		},
	})

	tests := []struct {
		name string
		id   string
	}{
		{"too long", strings.Repeat("a", 65)},
		{"spaces", "id with spaces"},
		{"control characters", "abc\x01def"},
		{"non-ascii", "идентификатор"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/id", nil)
			req.Header.Set("X-Request-Id", tt.id)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.NotEqual(t, tt.id, seen)
			assert.Len(t, seen, 26, "malformed ids are replaced by a ULID")
			assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestValidRequestID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"01HZY8Q7N4ABCDEFGHJKMNPQRS", true},
		{"3f2b8c1e-9d4a-4c6b-8e7f-1a2b3c4d5e6f", true},
		{"trace.span:1_a", true},
		{strings.Repeat("x", 64), true},
		{strings.Repeat("x", 65), false},
		{"a b", false},
		{"a\"b", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, validRequestID(tt.id))
		})
	}
}
