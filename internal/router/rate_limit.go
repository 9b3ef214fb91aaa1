package router

import (
	"fmt"
	"strings"
	"sync"
	"time"

	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/http/response"
	"github.com/fith/sugar/internal/i18n"
	"github.com/fith/sugar/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	localLimiterIdleTTL       = 5 * time.Minute
	localLimiterSweepInterval = time.Minute
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware 写操作频率限制中间件
// Redis 可用时按固定窗口计数，不可用或脚本失败时退回进程内令牌桶
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	local := newLocalLimiter(rule)
	return func(c *gin.Context) {
		if rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		allowed, waitSeconds := true, 0
		if client != nil {
			var err error
			allowed, waitSeconds, err = redisAllow(c, client, rule, key)
			if err != nil {
				logger.Warnw("rate_limit_redis_failed", "key", key, "error", err)
				allowed, waitSeconds = local.allow(key)
			}
		} else {
			allowed, waitSeconds = local.allow(key)
		}

		if !allowed {
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.rate_limited"
			}
			msg := i18n.Sprintf(i18n.ResolveLocale(c), msgKey, waitSeconds)
			response.Error(c, response.CodeTooManyRequests, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

func redisAllow(c *gin.Context, client *redis.Client, rule RateLimitRule, key string) (bool, int, error) {
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
	if err != nil {
		return false, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return false, 0, fmt.Errorf("unexpected rate limit result %v", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return false, 0, fmt.Errorf("unexpected rate limit counter %v", values[0])
	}
	ttlSeconds, _ := toInt64(values[1])
	if count > int64(rule.MaxRequests) {
		waitSeconds := int(ttlSeconds)
		if waitSeconds < 1 {
			waitSeconds = rule.WindowSeconds
		}
		return false, waitSeconds, nil
	}
	return true, 0, nil
}

type localBucket struct {
	limiter *rate.Limiter
	expires time.Time
}

// localLimiter 进程内令牌桶，窗口内平均放行 MaxRequests 次
// 空闲桶按固定间隔批量清理，单次请求不遍历全部 key
type localLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	window    int
	buckets   map[string]*localBucket
	lastSweep time.Time
}

func newLocalLimiter(rule RateLimitRule) *localLimiter {
	window, max := rule.WindowSeconds, rule.MaxRequests
	if window <= 0 || max <= 0 {
		return &localLimiter{buckets: map[string]*localBucket{}}
	}
	return &localLimiter{
		limit:   rate.Every(time.Duration(window) * time.Second / time.Duration(max)),
		burst:   max,
		window:  window,
		buckets: map[string]*localBucket{},
	}
}

func (l *localLimiter) allow(key string) (bool, int) {
	return l.allowAt(key, time.Now())
}

func (l *localLimiter) allowAt(key string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= localLimiterSweepInterval {
		l.sweep(now)
	}
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &localBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = bucket
	}
	bucket.expires = now.Add(localLimiterIdleTTL)

	reservation := bucket.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, l.window
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return false, int(delay.Seconds() + 0.999)
	}
	return true, 0
}

func (l *localLimiter) sweep(now time.Time) {
	for k, bucket := range l.buckets {
		if now.After(bucket.expires) {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

// KeyByUserOrIP 登录用户按用户 ID 限流，游客按 IP
func KeyByUserOrIP(c *gin.Context) string {
	if user := handlershared.CurrentUser(c); user != nil {
		return fmt.Sprintf("user:%d", user.ID)
	}
	return "ip:" + c.ClientIP()
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
