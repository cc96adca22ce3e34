package trace

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jfprgin/home-budget/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !strings.HasPrefix(a, "req_") || len(a) != len("req_")+16 {
		t.Errorf("GenerateRequestID() = %q", a)
	}
	if a == b {
		t.Errorf("GenerateRequestID() repeated %q", a)
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Format: "json", Output: &buf})
	m := NewMiddleware(func(*http.Request) string { return "192.0.2.1" }, log.NewStructuredLogger(logger))

	var seenID string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		log.FromContext(r.Context()).Info("handler ran")
		switch r.URL.Path {
		case "/fail":
			w.WriteHeader(http.StatusInternalServerError)
			return
		case "/missing":
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if seenID == "" || rr.Header().Get("X-Request-ID") != seenID {
		t.Fatalf("request id %q, header %q", seenID, rr.Header().Get("X-Request-ID"))
	}
	if !strings.Contains(buf.String(), `"request_id":"`+seenID+`"`) {
		t.Errorf("handler log lacks request id: %s", buf.String())
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	got := m.GetMetrics()
	if got.TotalRequests != 3 || got.ServerErrors != 1 || got.ClientErrors != 1 {
		t.Errorf("GetMetrics() = %+v", got)
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("5xx should log at error: %s", buf.String())
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}

func TestIncomingRequestID(t *testing.T) {
	m := NewMiddleware(nil, log.NewStructuredLogger(log.New(log.Config{Output: io.Discard})))
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		header string
		keep   bool
	}{
		{"edge-7f3a_01", true},
		{"", false},
		{"has spaces", false},
		{strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set(HeaderRequestID, tt.header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		got := rr.Header().Get(HeaderRequestID)
		if kept := got == tt.header; kept != tt.keep {
			t.Errorf("incoming %q: response id %q, kept=%v want %v", tt.header, got, kept, tt.keep)
		}
		if !tt.keep && !strings.HasPrefix(got, "req_") {
			t.Errorf("incoming %q: generated id %q", tt.header, got)
		}
	}
}
