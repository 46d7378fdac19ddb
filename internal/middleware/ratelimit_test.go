package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-tracker/backend/internal/config"

	"github.com/gin-gonic/gin"
)

func newRateLimitedRouter(cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewRateLimiter(cfg).Middleware())
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	router := newRateLimitedRouter(config.RateLimitConfig{
		RequestsPerMin:  60,
		BurstSize:       5,
		CleanupInterval: time.Minute,
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	router := newRateLimitedRouter(config.RateLimitConfig{
		RequestsPerMin:  60,
		BurstSize:       2,
		CleanupInterval: time.Minute,
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429 after the burst, got %d", last.Code)
	}
}

func TestRateLimiter_TracksClientsSeparately(t *testing.T) {
	router := newRateLimitedRouter(config.RateLimitConfig{
		RequestsPerMin:  60,
		BurstSize:       1,
		CleanupInterval: time.Minute,
	})

	// Exhaust the first client's bucket.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	// A different client still gets through.
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected a fresh client to be allowed, got %d", w.Code)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{
		RequestsPerMin:  60,
		BurstSize:       1,
		CleanupInterval: time.Hour,
	})

	rl.allow("10.0.0.1")
	rl.allow("10.0.0.2")

	rl.sweep(0)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.clients) != 0 {
		t.Errorf("Expected all stale buckets swept, got %d", len(rl.clients))
	}
}
