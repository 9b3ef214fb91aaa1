package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/discussions", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByUserOrIP(c); key != "ip:1.2.3.4" {
		t.Fatalf("guest key want ip:1.2.3.4 got %s", key)
	}
	c.Set(handlershared.ContextKeyCurrentUser, &models.User{ID: 9})
	if key := KeyByUserOrIP(c); key != "user:9" {
		t.Fatalf("member key want user:9 got %s", key)
	}
}

func serveTimes(r *gin.Engine, n int) []string {
	bodies := make([]string, 0, n)
	for i := 0; i < n; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.RemoteAddr = "5.6.7.8:1000"
		r.ServeHTTP(w, req)
		bodies = append(bodies, w.Body.String())
	}
	return bodies
}

func TestRateLimitMiddlewareWithRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{Prefix: "test:rate", WindowSeconds: 60, MaxRequests: 2}, nil))
	r.POST("/write", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	bodies := serveTimes(r, 3)
	if !strings.Contains(bodies[1], `"ok":true`) {
		t.Fatalf("second request should pass, got %s", bodies[1])
	}
	if !strings.Contains(bodies[2], `"status_code":429`) {
		t.Fatalf("third request should be limited, got %s", bodies[2])
	}
	if !mr.Exists("test:rate:5.6.7.8") {
		t.Fatalf("counter key should be stored in redis")
	}
}

func TestRateLimitMiddlewareFallsBackWhenRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, nil))
	r.POST("/write", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	bodies := serveTimes(r, 2)
	if !strings.Contains(bodies[0], `"ok":true`) {
		t.Fatalf("first request should pass through local limiter, got %s", bodies[0])
	}
	if !strings.Contains(bodies[1], `"status_code":429`) {
		t.Fatalf("local limiter should reject second request, got %s", bodies[1])
	}
}

func TestLocalLimiterRefills(t *testing.T) {
	limiter := newLocalLimiter(RateLimitRule{WindowSeconds: 1, MaxRequests: 2})
	for i := 0; i < 2; i++ {
		if ok, _ := limiter.allow("k"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, wait := limiter.allow("k")
	if ok || wait < 1 {
		t.Fatalf("third request should be limited with wait, got ok=%v wait=%d", ok, wait)
	}
	if ok, _ := limiter.allow("other"); !ok {
		t.Fatalf("keys should not share buckets")
	}
}

func TestLocalLimiterSweepsIdleBucketsPeriodically(t *testing.T) {
	limiter := newLocalLimiter(RateLimitRule{WindowSeconds: 60, MaxRequests: 5})
	start := time.Now()
	limiter.allowAt("old", start)
	limiter.allowAt("fresh", start.Add(localLimiterIdleTTL))

	// 过期但未到清理间隔时保留
	limiter.allowAt("fresh", start.Add(localLimiterIdleTTL+time.Second))
	if _, ok := limiter.buckets["old"]; !ok {
		t.Fatalf("idle bucket should wait for the next sweep")
	}

	limiter.allowAt("fresh", start.Add(localLimiterIdleTTL+localLimiterSweepInterval+time.Second))
	if _, ok := limiter.buckets["old"]; ok {
		t.Fatalf("idle bucket should be removed by the sweep")
	}
	if _, ok := limiter.buckets["fresh"]; !ok {
		t.Fatalf("active bucket should survive the sweep")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, nil))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint64", input: uint64(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
