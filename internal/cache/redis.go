package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fith/sugar/internal/config"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix 未配置前缀时使用的键名前缀
const DefaultPrefix = "sugar"

var (
	mu     sync.RWMutex
	client *redis.Client
	prefix = DefaultPrefix
)

// InitRedis 按配置创建 Redis 客户端，未启用时缓存层全部为空操作
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		UseClient(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	UseClient(redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
	return nil
}

// UseClient 替换当前客户端，传 nil 时关闭缓存
func UseClient(c *redis.Client, keyPrefix string) {
	keyPrefix = strings.TrimSpace(keyPrefix)
	if keyPrefix == "" {
		keyPrefix = DefaultPrefix
	}
	mu.Lock()
	client, prefix = c, keyPrefix
	mu.Unlock()
}

func current() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return current() != nil
}

// Client 获取 Redis 客户端，未启用时为 nil
func Client() *redis.Client {
	return current()
}

// Prefix 当前键名前缀
func Prefix() string {
	mu.RLock()
	defer mu.RUnlock()
	return prefix
}

// Ping 检查 Redis 连通性，未启用时视为正常
func Ping(ctx context.Context) error {
	rc := current()
	if rc == nil {
		return nil
	}
	return rc.Ping(ctx).Err()
}

// Close 关闭客户端并停用缓存
func Close() error {
	mu.Lock()
	rc := client
	client = nil
	mu.Unlock()
	if rc == nil {
		return nil
	}
	return rc.Close()
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	rc := current()
	if rc == nil {
		return false, nil
	}
	raw, err := rc.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	rc := current()
	if rc == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rc.Set(ctx, Key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	rc := current()
	if rc == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = Key(key)
	}
	return rc.Del(ctx, full...).Err()
}

// Key 返回带前缀的完整键名
func Key(key string) string {
	p := Prefix()
	key = strings.TrimSpace(key)
	if key == "" {
		return p
	}
	return p + ":" + key
}
