package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newEngine(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.POST("/write", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func post(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterPerClient(t *testing.T) {
	r := newEngine(NewRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		if code := post(r, "10.0.0.1"); code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, code)
		}
	}
	if code := post(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
	if code := post(r, "10.0.0.2"); code != http.StatusNoContent {
		t.Fatalf("expected other client to pass, got %d", code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newEngine(NewRateLimiter(0, 1))
	for i := 0; i < 5; i++ {
		if code := post(r, "10.0.0.1"); code != http.StatusNoContent {
			t.Fatalf("expected limiter to be disabled, got %d", code)
		}
	}
}

func TestRateLimiterEvictsIdleClientsPeriodically(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	t0 := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	rl.limiter("10.0.0.1", t0)
	rl.limiter("10.0.0.2", t0.Add(30*time.Second))
	rl.limiter("10.0.0.3", t0.Add(50*time.Second))

	rl.limiter("10.0.0.4", t0.Add(10*time.Minute+40*time.Second))
	if n := len(rl.visitors); n != 2 {
		t.Fatalf("expected 2 tracked clients after sweep, got %d", n)
	}
	if _, ok := rl.visitors["10.0.0.3"]; !ok {
		t.Fatalf("expected recently seen client to survive")
	}

	// 10.0.0.3 is idle by now, but the next sweep is not due yet.
	rl.limiter("10.0.0.5", t0.Add(11*time.Minute+10*time.Second))
	if n := len(rl.visitors); n != 3 {
		t.Fatalf("expected no sweep within a minute of the last one, got %d tracked", n)
	}
}
