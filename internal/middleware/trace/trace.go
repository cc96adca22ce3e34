// Package trace tags each request with an id, logs its start and end,
// and keeps the counters behind /metrics.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jfprgin/home-budget/internal/log"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// HeaderRequestID carries the id in both directions. A valid incoming id
// is kept so a proxy's id follows the request through the logs.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 64

type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.StructuredLogger
	now       func() time.Time

	total        atomic.Int64
	clientErrors atomic.Int64
	serverErrors atomic.Int64
	durationUs   atomic.Int64
}

// Metrics is a snapshot of the request counters. DurationSum covers every
// finished request.
type Metrics struct {
	TotalRequests int64
	ClientErrors  int64
	ServerErrors  int64
	DurationSum   time.Duration
}

func NewMiddleware(extractIP func(*http.Request) string, logger *log.StructuredLogger) *Middleware {
	if logger == nil {
		logger = log.NewStructuredLogger(log.FromContext(context.Background()))
	}
	return &Middleware{extractIP: extractIP, logger: logger, now: time.Now}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = GenerateRequestID()
		}
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, m.logger.Logger().With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, requestID)

		m.logger.LogHTTPStart(ctx, r, requestID, clientIP)
		m.total.Add(1)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := m.now().Sub(start)
		m.durationUs.Add(elapsed.Microseconds())
		switch {
		case rw.status >= 500:
			m.serverErrors.Add(1)
		case rw.status >= 400:
			m.clientErrors.Add(1)
		}
		m.logger.LogHTTPEnd(ctx, r, requestID, rw.status, elapsed.Milliseconds(), clientIP)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// GenerateRequestID returns "req_" and 16 hex digits from a random UUID.
func GenerateRequestID() string {
	id := uuid.New()
	const hex = "0123456789abcdef"
	out := make([]byte, 0, 20)
	out = append(out, "req_"...)
	for _, b := range id[:8] {
		out = append(out, hex[b>>4], hex[b&0x0f])
	}
	return string(out)
}

// validRequestID accepts short ids made of letters, digits, '-' and '_'.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests: m.total.Load(),
		ClientErrors:  m.clientErrors.Load(),
		ServerErrors:  m.serverErrors.Load(),
		DurationSum:   time.Duration(m.durationUs.Load()) * time.Microsecond,
	}
}
