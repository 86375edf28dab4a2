// Package worker rebuilds the report on a schedule and keeps the
// latest build available to the HTTP layer.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"actualboard/internal/actual"
	"actualboard/internal/events"
	"actualboard/internal/report"
)

// Publisher sends refresh notifications. The AMQP client implements
// it, a nil publisher disables notifications.
type Publisher interface {
	PublishRefreshCompleted(ctx context.Context, msg *events.RefreshCompletedMessage) error
}

// Resetter empties the record cache so the next fetch reads the
// source again. The cached source implements it.
type Resetter interface {
	Reset()
}

// Config holds configuration for the refresher.
type Config struct {
	// Interval is how often to rebuild the report (default: 1h)
	Interval time.Duration

	// Timeout bounds a single refresh run (default: 2m)
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 1 * time.Hour,
		Timeout:  2 * time.Minute,
	}
}

// Stats describes the refresher's run history.
type Stats struct {
	Runs      int64
	Failures  int64
	LastRun   time.Time
	LastRunID string
}

// Refresher fetches records, builds a report and caches the result.
// Scheduled runs and forced runs share one code path.
type Refresher struct {
	source    actual.Source
	cache     Resetter
	publisher Publisher
	opts      report.Options
	config    Config

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// refreshMu serialises runs, a tick and a forced refresh can race.
	refreshMu sync.Mutex

	latestMu   sync.RWMutex
	latest     *report.Report
	latestSnap *report.Snapshot
	lastErr    error
	stats      Stats
}

// NewRefresher creates a refresher. cache and publisher may be nil.
func NewRefresher(
	source actual.Source,
	cache Resetter,
	publisher Publisher,
	opts report.Options,
	config Config,
) *Refresher {
	return &Refresher{
		source:    source,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		config:    config,
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	go r.runLoop(ctx)

	slog.InfoContext(ctx, "Refresher started",
		"interval", r.config.Interval,
		"timeout", r.config.Timeout)

	return nil
}

// Stop gracefully stops the refresher and waits for completion.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	close(r.stopCh)

	select {
	case <-r.doneCh:
		slog.InfoContext(ctx, "Refresher stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresher stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	return nil
}

// IsRunning returns whether the refresh loop is active.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) runLoop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	// Build immediately on startup.
	r.refresh(ctx)

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh runs one full build: reset cache, fetch records, snapshot,
// build, store, notify. Publish failures do not fail the run.
func (r *Refresher) refresh(ctx context.Context) (*report.Report, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	runID := uuid.NewString()
	start := time.Now()

	if r.cache != nil {
		r.cache.Reset()
	}

	records, err := actual.FetchRecords(ctx, r.source)
	if err != nil {
		r.setFailure(err)
		slog.ErrorContext(ctx, "Refresh failed", "run_id", runID, "error", err)
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	snap, err := report.NewSnapshot(records)
	if err != nil {
		r.setFailure(err)
		slog.ErrorContext(ctx, "Refresh failed", "run_id", runID, "error", err)
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	rep := report.Build(ctx, snap, r.opts, time.Now())
	r.setLatest(rep, snap, runID)

	slog.InfoContext(ctx, "Refresh completed",
		"run_id", runID,
		"periods", len(rep.Periods),
		"transactions", rep.Transactions,
		"duration_ms", time.Since(start).Milliseconds())

	if r.publisher != nil {
		msg := events.NewRefreshCompletedMessage(
			runID,
			rep.GeneratedAt,
			len(rep.Periods),
			rep.Transactions,
			rep.SkippedAccounts+rep.SkippedCategories,
			rep.Empty,
		)
		if err := r.publisher.PublishRefreshCompleted(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to publish refresh notification",
				"run_id", runID, "error", err)
		}
	}

	return rep, nil
}

// RefreshNow forces a rebuild outside the schedule and returns the
// fresh report.
func (r *Refresher) RefreshNow(ctx context.Context) (*report.Report, error) {
	return r.refresh(ctx)
}

// Latest returns the most recent successful build.
func (r *Refresher) Latest() (*report.Report, bool) {
	r.latestMu.RLock()
	defer r.latestMu.RUnlock()
	return r.latest, r.latest != nil
}

// LatestSnapshot returns the snapshot behind the most recent build.
// The HTTP layer serves normalized record lists from it.
func (r *Refresher) LatestSnapshot() (*report.Snapshot, bool) {
	r.latestMu.RLock()
	defer r.latestMu.RUnlock()
	return r.latestSnap, r.latestSnap != nil
}

// LastError returns the error of the most recent run, nil after a
// successful run.
func (r *Refresher) LastError() error {
	r.latestMu.RLock()
	defer r.latestMu.RUnlock()
	return r.lastErr
}

// Stats returns run statistics.
func (r *Refresher) Stats() Stats {
	r.latestMu.RLock()
	defer r.latestMu.RUnlock()
	return r.stats
}

func (r *Refresher) setLatest(rep *report.Report, snap *report.Snapshot, runID string) {
	r.latestMu.Lock()
	r.latest = rep
	r.latestSnap = snap
	r.lastErr = nil
	r.stats.Runs++
	r.stats.LastRun = time.Now()
	r.stats.LastRunID = runID
	r.latestMu.Unlock()
}

func (r *Refresher) setFailure(err error) {
	r.latestMu.Lock()
	r.lastErr = err
	r.stats.Runs++
	r.stats.Failures++
	r.stats.LastRun = time.Now()
	r.latestMu.Unlock()
}
