package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"actualboard/internal/actual"
	"actualboard/internal/actual/memory"
	"actualboard/internal/events"
	"actualboard/internal/report"
)

func testRecords() actual.Records {
	return actual.Records{
		Accounts: []actual.Account{
			{ID: "a1", Name: "Checking", Balance: 100000},
		},
		Categories: []actual.Category{
			{ID: "c1", Name: "Salary", GroupID: "g-income", IsIncome: true},
			{ID: "c2", Name: "Groceries", GroupID: "g-daily"},
		},
		Payees: []actual.Payee{
			{ID: "p1", Name: "Employer"},
		},
		Transactions: []actual.Transaction{
			{ID: "t1", Account: "a1", Category: "c1", Payee: "p1", Date: "2024-01-25", Amount: 300000},
			{ID: "t2", Account: "a1", Category: "c2", Date: "2024-02-03", Amount: -12000},
		},
	}
}

type fakePublisher struct {
	calls int32
	last  *events.RefreshCompletedMessage
	err   error
}

func (p *fakePublisher) PublishRefreshCompleted(_ context.Context, msg *events.RefreshCompletedMessage) error {
	atomic.AddInt32(&p.calls, 1)
	p.last = msg
	return p.err
}

type fakeResetter struct {
	calls int32
}

func (r *fakeResetter) Reset() {
	atomic.AddInt32(&r.calls, 1)
}

type failingSource struct{}

func (failingSource) Accounts(context.Context) ([]actual.Account, error) {
	return nil, errors.New("source unavailable")
}
func (failingSource) Categories(context.Context) ([]actual.Category, error) {
	return nil, errors.New("source unavailable")
}
func (failingSource) Payees(context.Context) ([]actual.Payee, error) {
	return nil, errors.New("source unavailable")
}
func (failingSource) Transactions(context.Context) ([]actual.Transaction, error) {
	return nil, errors.New("source unavailable")
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Interval != 1*time.Hour {
		t.Errorf("expected Interval 1h, got %v", config.Interval)
	}
	if config.Timeout != 2*time.Minute {
		t.Errorf("expected Timeout 2m, got %v", config.Timeout)
	}
}

func TestRefresher_IsRunning(t *testing.T) {
	refresher := NewRefresher(memory.New(testRecords()), nil, nil, report.Options{}, DefaultConfig())

	if refresher.IsRunning() {
		t.Error("refresher should not be running initially")
	}
}

func TestRefresher_StartTwice(t *testing.T) {
	refresher := NewRefresher(memory.New(testRecords()), nil, nil, report.Options{}, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher.mu.Lock()
	refresher.running = true
	refresher.mu.Unlock()

	err := refresher.Start(ctx)
	if err == nil {
		t.Error("expected error when starting already running refresher")
	}
}

func TestRefresher_StopNotRunning(t *testing.T) {
	refresher := NewRefresher(memory.New(testRecords()), nil, nil, report.Options{}, DefaultConfig())

	err := refresher.Stop(context.Background())
	if err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestRefresher_RefreshNow(t *testing.T) {
	publisher := &fakePublisher{}
	resetter := &fakeResetter{}
	refresher := NewRefresher(memory.New(testRecords()), resetter, publisher, report.Options{}, DefaultConfig())

	rep, err := refresher.RefreshNow(context.Background())
	if err != nil {
		t.Fatalf("RefreshNow() error = %v", err)
	}

	if rep.Transactions != 2 {
		t.Errorf("report Transactions = %d, want 2", rep.Transactions)
	}
	if len(rep.Periods) != 2 {
		t.Errorf("report has %d periods, want 2", len(rep.Periods))
	}

	latest, ok := refresher.Latest()
	if !ok {
		t.Fatal("Latest() should return the fresh report")
	}
	if latest != rep {
		t.Error("Latest() should return the report from the last run")
	}
	if err := refresher.LastError(); err != nil {
		t.Errorf("LastError() = %v, want nil", err)
	}

	snap, ok := refresher.LatestSnapshot()
	if !ok {
		t.Fatal("LatestSnapshot() should return the snapshot behind the report")
	}
	if len(snap.Accounts) != 1 || len(snap.Transactions) != 2 {
		t.Errorf("snapshot holds %d accounts and %d transactions, want 1 and 2",
			len(snap.Accounts), len(snap.Transactions))
	}

	if got := atomic.LoadInt32(&resetter.calls); got != 1 {
		t.Errorf("cache Reset called %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&publisher.calls); got != 1 {
		t.Fatalf("publisher called %d times, want 1", got)
	}
	if publisher.last.Periods != 2 || publisher.last.Transactions != 2 {
		t.Errorf("published message = %+v, want 2 periods and 2 transactions", publisher.last)
	}
	if publisher.last.RunID == "" {
		t.Error("published message should carry a run id")
	}

	stats := refresher.Stats()
	if stats.Runs != 1 || stats.Failures != 0 {
		t.Errorf("Stats() = %+v, want 1 run and 0 failures", stats)
	}
	if stats.LastRun.IsZero() {
		t.Error("Stats() LastRun should be set after a run")
	}
	if stats.LastRunID != publisher.last.RunID {
		t.Errorf("Stats() LastRunID = %q, want the published run id %q", stats.LastRunID, publisher.last.RunID)
	}
}

func TestRefresher_RefreshNowSourceFailure(t *testing.T) {
	refresher := NewRefresher(failingSource{}, nil, nil, report.Options{}, DefaultConfig())

	_, err := refresher.RefreshNow(context.Background())
	if err == nil {
		t.Fatal("RefreshNow() should fail when the source fails")
	}

	if _, ok := refresher.Latest(); ok {
		t.Error("Latest() should stay empty after a failed run")
	}
	if refresher.LastError() == nil {
		t.Error("LastError() should report the failure")
	}

	stats := refresher.Stats()
	if stats.Runs != 1 || stats.Failures != 1 {
		t.Errorf("Stats() = %+v, want 1 run and 1 failure", stats)
	}
}

func TestRefresher_PublishFailureDoesNotFailRun(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	refresher := NewRefresher(memory.New(testRecords()), nil, publisher, report.Options{}, DefaultConfig())

	rep, err := refresher.RefreshNow(context.Background())
	if err != nil {
		t.Fatalf("RefreshNow() error = %v", err)
	}
	if rep == nil {
		t.Fatal("RefreshNow() should return the report despite publish failure")
	}
	if _, ok := refresher.Latest(); !ok {
		t.Error("Latest() should hold the report despite publish failure")
	}
}

func TestRefresher_StartStop(t *testing.T) {
	config := DefaultConfig()
	config.Interval = 50 * time.Millisecond
	refresher := NewRefresher(memory.New(testRecords()), nil, nil, report.Options{}, config)

	ctx := context.Background()
	if err := refresher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !refresher.IsRunning() {
		t.Error("refresher should be running after Start")
	}

	// The first build runs right away, poll until it lands.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := refresher.Latest(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no report built within 2s of Start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := refresher.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if refresher.IsRunning() {
		t.Error("refresher should not be running after Stop")
	}
}
