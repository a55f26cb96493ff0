package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLimiter(t *testing.T, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: burst, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	return rl
}

func TestAllow_BurstThenReject(t *testing.T) {
	rl := testLimiter(t, 2)
	if !rl.Allow("u1") || !rl.Allow("u1") {
		t.Fatal("burst requests rejected")
	}
	if rl.Allow("u1") {
		t.Error("request beyond burst allowed")
	}
	if !rl.Allow("u2") {
		t.Error("other user affected by u1's bucket")
	}
	if rl.Len() != 2 {
		t.Errorf("Len = %d, want 2", rl.Len())
	}
}

func TestCleanup_DropsIdle(t *testing.T) {
	rl := NewRateLimiter(Config{RPS: 1, Burst: 1, CleanupInterval: time.Hour})
	defer rl.Stop()
	rl.Allow("u1")

	rl.mu.Lock()
	rl.limiters["u1"].lastUsed = time.Now().Add(-2 * time.Hour)
	rl.mu.Unlock()

	rl.Cleanup()
	if rl.Len() != 0 {
		t.Errorf("Len = %d after cleanup, want 0", rl.Len())
	}
}

func TestMiddleware(t *testing.T) {
	rl := testLimiter(t, 1)
	h := Middleware(rl, func(r *http.Request) string { return r.Header.Get("X-User") })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	do := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/suggest-tags", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("u1"); rec.Code != http.StatusOK {
		t.Fatalf("first request: %d", rec.Code)
	}
	rec := do("u1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	for range 3 {
		if rec := do(""); rec.Code != http.StatusOK {
			t.Errorf("anonymous request limited: %d", rec.Code)
		}
	}
}
