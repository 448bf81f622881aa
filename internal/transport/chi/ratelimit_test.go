package chi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"golang.org/x/time/rate"
)

func TestNewIPRateLimiter_DisabledIsNil(t *testing.T) {
	if l := NewIPRateLimiter(0, 5); l != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
}

func TestIPRateLimiter_NilMiddlewarePassThrough(t *testing.T) {
	var l *IPRateLimiter
	handler := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for range 100 {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/token", http.NoBody))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("got %d", rr.Code)
		}
	}
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)

	if !l.Allow("10.0.0.1") {
		t.Fatal("first request from 10.0.0.1 should pass")
	}
	if l.Allow("10.0.0.1") {
		t.Error("second request from 10.0.0.1 should be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other IP should have its own bucket")
	}
}

func TestIPRateLimiter_ConcurrentGetOrCreate(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)

	var wg sync.WaitGroup
	results := make(chan bool, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Allow("192.0.2.7")
		}()
	}
	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("allowed %d requests, want 1", allowed)
	}
}

func TestIPRateLimiter_SweepsIdleLimiters(t *testing.T) {
	l := NewIPRateLimiter(1000, 1)
	for i := range maxTrackedIPs {
		l.limiters[fmt.Sprintf("10.1.%d.%d", i/256, i%256)] = rate.NewLimiter(l.limit, l.burst)
	}

	l.Allow("fresh")
	if len(l.limiters) >= maxTrackedIPs {
		t.Errorf("expected sweep, %d limiters tracked", len(l.limiters))
	}
	if _, ok := l.limiters["fresh"]; !ok {
		t.Error("new IP should be tracked after sweep")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "203.0.113.9:54321"
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("got %q", got)
	}
	req.RemoteAddr = "203.0.113.9"
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("without port: got %q", got)
	}
}
