package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 61 should be blocked")
	}
	if got := rl.Hits(); got != 1 {
		t.Errorf("Hits() = %d, want 1", got)
	}

	// Other clients keep their own budget.
	if !rl.allow("10.0.0.2") {
		t.Error("different client should be allowed")
	}
	if got := rl.ActiveClients(); got != 2 {
		t.Errorf("ActiveClients() = %d, want 2", got)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.mu.Lock()
	rl.clients["10.0.0.1"] = &clientInfo{
		lastRequest: time.Now().Add(-2 * time.Minute),
		requests:    60,
	}
	rl.mu.Unlock()

	if !rl.allow("10.0.0.1") {
		t.Error("request after window expiry should be allowed")
	}

	rl.mu.Lock()
	requests := rl.clients["10.0.0.1"].requests
	rl.mu.Unlock()
	if requests != 1 {
		t.Errorf("requests after reset = %d, want 1", requests)
	}
}

func TestRateLimiterCleanupStaleEntries(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.allow("10.0.0.1")
	rl.mu.Lock()
	rl.clients["10.0.0.9"] = &clientInfo{
		lastRequest: time.Now().Add(-11 * time.Minute),
		requests:    5,
	}
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() after cleanup = %d, want 1", got)
	}
	rl.mu.Lock()
	_, stale := rl.clients["10.0.0.9"]
	rl.mu.Unlock()
	if stale {
		t.Error("stale entry should be removed")
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := newRateLimiter()
	rl.stop()
	rl.stop()
}
