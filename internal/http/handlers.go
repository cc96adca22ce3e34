package http

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	switch {
	case s.store == nil:
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	default:
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

type metricFamily struct {
	name, help, kind string
	samples          []metricSample
}

type metricSample struct {
	labels string
	value  string
}

func counter(name, help string, v int64) metricFamily {
	return metricFamily{name: name, help: help, kind: "counter", samples: []metricSample{{value: strconv.FormatInt(v, 10)}}}
}

func gauge(name, help string, v float64) metricFamily {
	return metricFamily{name: name, help: help, kind: "gauge", samples: []metricSample{{value: strconv.FormatFloat(v, 'f', -1, 64)}}}
}

// handleMetrics writes the counters in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traffic := s.traceMiddleware.GetMetrics()
	limits := s.rateLimiter.GetMetrics()
	security := s.securityDetector.GetMetrics()

	families := []metricFamily{
		counter("http_requests_total", "Total number of HTTP requests", traffic.TotalRequests),
		counter("http_client_errors_total", "Total number of 4xx responses", traffic.ClientErrors),
		counter("http_server_errors_total", "Total number of 5xx responses", traffic.ServerErrors),
		{
			name: "http_request_duration_seconds_sum", help: "Time spent serving finished requests", kind: "counter",
			samples: []metricSample{{value: strconv.FormatFloat(traffic.DurationSum.Seconds(), 'f', 6, 64)}},
		},
		counter("users_registered_total", "Total number of registered users", atomic.LoadInt64(&s.appMetrics.usersRegistered)),
		{
			name: "ledger_created_total", help: "Total number of ledger rows created", kind: "counter",
			samples: []metricSample{
				{labels: `resource="category"`, value: strconv.FormatInt(atomic.LoadInt64(&s.appMetrics.categoriesCreated), 10)},
				{labels: `resource="transaction"`, value: strconv.FormatInt(atomic.LoadInt64(&s.appMetrics.transactionsCreated), 10)},
			},
		},
		counter("rate_limit_hits_total", "Total rate limit hits", limits.TotalHits),
		counter("suspicious_requests_total", "Total suspicious requests detected", security.SuspiciousRequests),
		gauge("active_rate_limit_clients", "Currently tracked rate limit clients", float64(limits.ClientCount)),
		gauge("uptime_seconds", "Application uptime in seconds", math.Floor(time.Since(s.appMetrics.uptime).Seconds())),
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, f := range families {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
		for _, sample := range f.samples {
			if sample.labels != "" {
				fmt.Fprintf(w, "%s{%s} %s\n", f.name, sample.labels, sample.value)
			} else {
				fmt.Fprintf(w, "%s %s\n", f.name, sample.value)
			}
		}
		fmt.Fprintln(w)
	}
}
