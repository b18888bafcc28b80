package infra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache[string](time.Minute)
	c.Set("acme", "profile")

	got, ok := c.Get("acme")
	if !ok || got != "profile" {
		t.Errorf("Get: got %q, %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}

	c.Invalidate("acme")
	if _, ok := c.Get("acme"); ok {
		t.Error("Get after Invalidate should miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[int](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", 1)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	c.Cleanup()
	if c.Len() != 0 {
		t.Errorf("Len after Cleanup: got %d, want 0", c.Len())
	}
}

func TestCacheDisabled(t *testing.T) {
	c := NewCache[int](0)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("zero-TTL cache should not store")
	}

	var nilCache *Cache[int]
	nilCache.Set("k", 1)
	if _, ok := nilCache.Get("k"); ok {
		t.Error("nil cache should miss")
	}
}

func TestRateLimiterBurstThenBlock(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait #%d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("third Wait: got %v, want deadline exceeded", err)
	}
}

func TestPerSecondDisabled(t *testing.T) {
	if PerSecond(0) != nil {
		t.Error("PerSecond(0) should return nil")
	}
	var rl *RateLimiter
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter Wait: %v", err)
	}
}

func TestHTTPClientGetSendsHeaders(t *testing.T) {
	var gotUA, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Api-Key")
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c := NewHTTPClient(5*time.Second, "", nil)
	data, err := c.GetBytes(context.Background(), srv.URL, map[string]string{"X-Api-Key": "secret"})
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("body: got %q, want %q", data, "ok")
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent: got %q", gotUA)
	}
	if gotCustom != "secret" {
		t.Errorf("X-Api-Key: got %q", gotCustom)
	}
}

func TestHTTPClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(5*time.Second, "test-agent", nil)
	_, err := c.GetBytes(context.Background(), srv.URL, nil)

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error: got %T %v, want *HTTPStatusError", err, err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode: got %d, want 403", statusErr.StatusCode)
	}
}
