package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/log"
	"github.com/jfprgin/home-budget/internal/middleware/ratelimit"
	"github.com/jfprgin/home-budget/internal/middleware/security"
	"github.com/jfprgin/home-budget/internal/middleware/trace"
	"github.com/jfprgin/home-budget/internal/services"
)

const maxBodyBytes = 1 << 20

// Pinger is the readiness probe of the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP-level settings.
type Config struct {
	Addr          string
	PageSize      int
	MaxPageSize   int
	AuthRateLimit int // requests per minute per client on auth routes
	Location      *time.Location
}

// Application metrics
type appMetrics struct {
	uptime              time.Time
	usersRegistered     int64
	categoriesCreated   int64
	transactionsCreated int64
}

type Server struct {
	http.Server
	svc    *services.Registry
	store  Pinger
	logger *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	headers          *security.HeadersMiddleware
	appMetrics       *appMetrics

	pageSize    int
	maxPageSize int
	loc         *time.Location
}

// NewServer builds the API server. Call Shutdown to stop it and its
// background goroutines.
func NewServer(cfg Config, svc *services.Registry, store Pinger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	httpLogger := logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()
	structured := log.NewStructuredLogger(httpLogger)

	s := &Server{
		svc:              svc,
		store:            store,
		logger:           httpLogger,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.AuthRateLimit}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, structured),
		headers:          security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		appMetrics:       &appMetrics{uptime: time.Now()},
		pageSize:         cfg.PageSize,
		maxPageSize:      cfg.MaxPageSize,
		loc:              cfg.Location,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limitBody(handler)
	handler = s.detectSuspicious(handler)
	handler = s.headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	throttled := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.writeThrottled)

	// identity
	mux.Handle("POST /api/register", throttled(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/token", throttled(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/token/refresh", throttled(http.HandlerFunc(s.handleRefresh)))
	mux.Handle("POST /api/logout", s.requireAuth(s.handleLogout))
	mux.Handle("POST /api/change-password", throttled(s.requireAuth(s.handleChangePassword)))
	mux.Handle("GET /api/profile", s.requireAuth(s.handleProfile))
	mux.Handle("DELETE /api/profile", s.requireAuth(s.handleDeleteProfile))

	// categories
	mux.Handle("GET /api/categories", s.requireAuth(s.handleListCategories))
	mux.Handle("POST /api/categories", s.requireAuth(s.handleCreateCategory))
	mux.Handle("GET /api/categories/{id}", s.requireAuth(s.handleGetCategory))
	mux.Handle("PUT /api/categories/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.Handle("PATCH /api/categories/{id}", s.requireAuth(s.handlePatchCategory))
	mux.Handle("DELETE /api/categories/{id}", s.requireAuth(s.handleDeleteCategory))

	// transactions
	mux.Handle("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/expenses", s.requireAuth(s.handleListByType(core.Expense)))
	mux.Handle("GET /api/transactions/incomes", s.requireAuth(s.handleListByType(core.Income)))
	mux.Handle("GET /api/transactions/week", s.requireAuth(s.handleSummary(core.PeriodWeek)))
	mux.Handle("GET /api/transactions/month", s.requireAuth(s.handleSummary(core.PeriodMonth)))
	mux.Handle("GET /api/transactions/year", s.requireAuth(s.handleSummary(core.PeriodYear)))
	mux.Handle("GET /api/transactions/custom", s.requireAuth(s.handleCustomSummary))
	mux.Handle("GET /api/transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.Handle("PATCH /api/transactions/{id}", s.requireAuth(s.handlePatchTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	// operational
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
}

// Shutdown drains connections and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down server", log.FieldOperation, log.OpShutdown)
	s.rateLimiter.Stop()
	return s.Server.Shutdown(ctx)
}

// authedHandler receives the user resolved from the bearer token.
type authedHandler func(w http.ResponseWriter, r *http.Request, u core.User)

// requireAuth resolves the access token and adds the user id to the
// request logger.
func (s *Server) requireAuth(next authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if header == "" || !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			UnauthorizedError(detailNoCredentials).Write(w)
			return
		}

		u, err := s.svc.Auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := log.NewContext(r.Context(), log.FromContext(r.Context()).With(log.FieldUserID, u.ID))
		next(w, r.WithContext(ctx), u)
	})
}

func (s *Server) writeThrottled(w http.ResponseWriter, r *http.Request, seconds int) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests,
		fmt.Sprintf("Request was throttled. Expected available in %d seconds.", seconds)).Write(w)
}

// detectSuspicious logs probing traffic; it never blocks it.
func (s *Server) detectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// pathID reads the {id} segment. A malformed id is reported as not found.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) parseBody(r *http.Request) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Server) countWrite(counter *int64) {
	atomic.AddInt64(counter, 1)
}

// ledgerLog returns a structured logger carrying the request's fields.
func ledgerLog(r *http.Request) *log.StructuredLogger {
	return log.NewStructuredLogger(log.FromContext(r.Context()))
}
