package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"actualboard/internal/core"
	"actualboard/internal/log"
	"actualboard/internal/report"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// latest fetches the current report and snapshot, answering 503 until
// the first refresh has completed.
func (s *Server) latest(w http.ResponseWriter) (*report.Report, *report.Snapshot, bool) {
	rep, ok := s.reports.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no report available yet")
		return nil, nil, false
	}
	snap, _ := s.reports.LatestSnapshot()
	return rep, snap, true
}

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.uptime).String(),
	})
}

// handleReady reports readiness. The service is ready once the refresher
// has produced at least one report.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if _, ok := s.reports.Latest(); ok {
		checks["report"] = "ok"
	} else {
		checks["report"] = "failed: no report built yet"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	// Informational only, a stopped refresher still serves the last report.
	if s.reports.IsRunning() {
		checks["refresher"] = "ok"
	} else {
		checks["refresher"] = "stopped"
	}

	if err := s.reports.LastError(); err != nil {
		checks["last_refresh"] = fmt.Sprintf("failed: %v", err)
	} else {
		checks["last_refresh"] = "ok"
	}

	checks["backend"] = s.opts.Backend

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes application counters in plain text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	totalRequests := atomic.LoadInt64(&s.metrics.totalRequests)
	forcedRefreshes := atomic.LoadInt64(&s.metrics.forcedRefreshes)
	stats := s.reports.Stats()
	uptime := time.Since(s.metrics.uptime)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", totalRequests)

	fmt.Fprintf(w, "# HELP refresh_runs_total Total number of refresh runs\n")
	fmt.Fprintf(w, "# TYPE refresh_runs_total counter\n")
	fmt.Fprintf(w, "refresh_runs_total %d\n\n", stats.Runs)

	fmt.Fprintf(w, "# HELP refresh_failures_total Total number of failed refresh runs\n")
	fmt.Fprintf(w, "# TYPE refresh_failures_total counter\n")
	fmt.Fprintf(w, "refresh_failures_total %d\n\n", stats.Failures)

	fmt.Fprintf(w, "# HELP forced_refreshes_total Refreshes triggered through the API\n")
	fmt.Fprintf(w, "# TYPE forced_refreshes_total counter\n")
	fmt.Fprintf(w, "forced_refreshes_total %d\n\n", forcedRefreshes)

	if s.opts.CacheStats != nil {
		cache := s.opts.CacheStats()
		fmt.Fprintf(w, "# HELP records_cache_hits_total Record fetches served from the session cache\n")
		fmt.Fprintf(w, "# TYPE records_cache_hits_total counter\n")
		fmt.Fprintf(w, "records_cache_hits_total %d\n\n", cache.Hits)

		fmt.Fprintf(w, "# HELP records_cache_misses_total Record fetches that reached the backend\n")
		fmt.Fprintf(w, "# TYPE records_cache_misses_total counter\n")
		fmt.Fprintf(w, "records_cache_misses_total %d\n\n", cache.Misses)
	}

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", s.rateLimiter.Hits())

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.ActiveClients())

	if rep, ok := s.reports.Latest(); ok {
		fmt.Fprintf(w, "# HELP report_periods Months covered by the current report\n")
		fmt.Fprintf(w, "# TYPE report_periods gauge\n")
		fmt.Fprintf(w, "report_periods %d\n\n", len(rep.Periods))

		fmt.Fprintf(w, "# HELP report_transactions Transactions aggregated into the current report\n")
		fmt.Fprintf(w, "# TYPE report_transactions gauge\n")
		fmt.Fprintf(w, "report_transactions %d\n\n", rep.Transactions)

		fmt.Fprintf(w, "# HELP report_skipped_records Transactions excluded for unknown accounts or categories\n")
		fmt.Fprintf(w, "# TYPE report_skipped_records gauge\n")
		fmt.Fprintf(w, "report_skipped_records %d\n\n", rep.SkippedAccounts+rep.SkippedCategories)

		empty := 0
		if rep.Empty {
			empty = 1
		}
		fmt.Fprintf(w, "# HELP report_empty Whether the current report was built from an empty dataset\n")
		fmt.Fprintf(w, "# TYPE report_empty gauge\n")
		fmt.Fprintf(w, "report_empty %d\n\n", empty)
	}

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}

// handleSummary returns report and refresh status at a glance.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	rep, snap, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, NewSummary(rep, snap, s.reports.Stats()))
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	rep, _, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"periods": rep.Periods,
		"count":   len(rep.Periods),
	})
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	rep, _, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, netWorthView(rep.NetWorth))
}

func (s *Server) handleCashflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	rep, _, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cashflowView(rep.Cashflow))
}

func (s *Server) handleSavingsMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	rep, _, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, metricsView(rep.Metrics))
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	_, snap, ok := s.latest(w)
	if !ok {
		return
	}
	accounts := accountViews(snap)
	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	_, snap, ok := s.latest(w)
	if !ok {
		return
	}
	categories := categoryViews(snap)
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}

func (s *Server) handlePayees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	_, snap, ok := s.latest(w)
	if !ok {
		return
	}
	payees := payeeViews(snap)
	writeJSON(w, http.StatusOK, map[string]any{
		"payees": payees,
		"count":  len(payees),
	})
}

// handleTransactions lists normalized transactions, optionally limited to
// a month range via from= and to= query parameters.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	from, ok := monthParam(r, "from")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from month, want YYYY-MM")
		return
	}
	to, ok := monthParam(r, "to")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid to month, want YYYY-MM")
		return
	}
	_, snap, ok := s.latest(w)
	if !ok {
		return
	}

	var txs []core.Transaction
	for _, tx := range snap.Transactions {
		month := tx.Date.Month()
		if from != "" && month < from {
			continue
		}
		if to != "" && month > to {
			continue
		}
		txs = append(txs, tx)
	}

	views := transactionViews(txs)
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": views,
		"count":        len(views),
	})
}

// handleDashboard bundles everything a dashboard client needs in one call.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	rep, snap, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, NewDashboard(rep, snap, s.opts.Report))
}

// handleRefresh triggers an immediate refresh and returns the resulting
// summary.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	rep, err := s.reports.RefreshNow(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Forced refresh failed", log.FieldError, err)
		writeError(w, http.StatusBadGateway, "refresh failed: "+err.Error())
		return
	}

	atomic.AddInt64(&s.metrics.forcedRefreshes, 1)
	snap, _ := s.reports.LatestSnapshot()
	writeJSON(w, http.StatusOK, NewSummary(rep, snap, s.reports.Stats()))
}
