package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request should be rejected")
	}
}

func TestAllowSeparateClients(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first client should be allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("second client has its own window")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("first client should now be limited")
	}
}

func TestWindowReset(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}

	rl.mu.Lock()
	rl.clients["1.2.3.4"].lastRequest = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	if !rl.Allow("1.2.3.4") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 10})
	defer rl.Stop()

	rl.Allow("1.2.3.4")
	rl.Allow("5.6.7.8")

	rl.mu.Lock()
	rl.clients["1.2.3.4"].lastRequest = time.Now().Add(-20 * time.Minute)
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("got %d active clients, want 1", got)
	}
}

func TestDefaultsApplied(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	if rl.requestsPerMinute != 60 {
		t.Errorf("got limit %d, want 60", rl.requestsPerMinute)
	}
}

func TestStopIdempotent(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	rl.Stop()
	rl.Stop()
}
