// Package http serves the report over JSON: health and metrics
// endpoints plus the API a dashboard frontend reads.
package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"actualboard/internal/actual/cached"
	"actualboard/internal/log"
	"actualboard/internal/report"
	"actualboard/internal/worker"
)

// ReportProvider hands the server the latest build. The refresh
// worker implements it.
type ReportProvider interface {
	Latest() (*report.Report, bool)
	LatestSnapshot() (*report.Snapshot, bool)
	RefreshNow(ctx context.Context) (*report.Report, error)
	Stats() worker.Stats
	IsRunning() bool
	LastError() error
}

// Options configures the server beyond its listen address.
type Options struct {
	// Report is echoed in the dashboard bundle (account groups, sort
	// order, filters).
	Report report.Options

	// Backend labels the record source in readiness output.
	Backend string

	// TrustedProxies lists CIDRs allowed to set forwarding headers.
	// Empty means localhost plus the private ranges.
	TrustedProxies []string

	// CacheStats reports record cache counters for /metrics. May be
	// nil when no cache is wired.
	CacheStats func() cached.Stats
}

type appMetrics struct {
	totalRequests   int64
	forcedRefreshes int64
	uptime          time.Time
}

type Server struct {
	http.Server
	reports     ReportProvider
	opts        Options
	rateLimiter *rateLimiter
	trusted     []*net.IPNet
	metrics     *appMetrics

	shutdownOnce sync.Once
}

type contextKey string

const requestIDKey contextKey = "request_id"

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, reports ReportProvider, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    64 << 10,
		},
		reports:     reports,
		opts:        opts,
		rateLimiter: newRateLimiter(),
		trusted:     parseTrustedProxies(opts.TrustedProxies),
		metrics:     &appMetrics{uptime: time.Now()},
	}

	// Probes and metrics stay outside the middleware chain so
	// scrapers do not show up in request logs or counters.
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/api/periods", s.withMiddleware(s.handlePeriods))
	mux.HandleFunc("/api/networth", s.withMiddleware(s.handleNetWorth))
	mux.HandleFunc("/api/cashflow", s.withMiddleware(s.handleCashflow))
	mux.HandleFunc("/api/metrics", s.withMiddleware(s.handleSavingsMetrics))
	mux.HandleFunc("/api/accounts", s.withMiddleware(s.handleAccounts))
	mux.HandleFunc("/api/categories", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("/api/payees", s.withMiddleware(s.handlePayees))
	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("/api/refresh", s.withMiddleware(s.handleRefresh))

	return s
}

// withMiddleware adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := s.extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		atomic.AddInt64(&s.metrics.totalRequests, 1)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate limit mutating requests only, reads are cheap.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		s.applySecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// Shutdown stops the server and its rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
