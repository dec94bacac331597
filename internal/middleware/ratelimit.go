package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/iliyamo/visit-planner/internal/config"
)

// limiterScript refills and takes one token atomically. It returns
// {allowed, remaining, retry_after_ms}.
var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// decision is the outcome of one token take.
type decision struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// bucket takes one token for key.
type bucket interface {
	take(ctx context.Context, key string, now time.Time) (decision, error)
}

type redisBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

func (b redisBucket) take(ctx context.Context, key string, now time.Time) (decision, error) {
	vals, err := limiterScript.Run(ctx, b.rdb, []string{key},
		now.UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Result()
	if err != nil {
		return decision{}, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return decision{}, fmt.Errorf("unexpected script result %#v", vals)
	}
	return decision{
		allowed:   asInt64(arr[0]) == 1,
		remaining: asInt64(arr[1]),
		retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

// localBucket keeps one rate.Limiter per key in process memory. Idle keys
// are evicted after cfg.TTL.
type localBucket struct {
	cfg   config.RateLimitConfig
	limit rate.Limit

	mu        sync.Mutex
	keys      map[string]*localEntry
	lastSweep time.Time
}

type localEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLocalBucket(cfg config.RateLimitConfig) *localBucket {
	every := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
	return &localBucket{
		cfg:   cfg,
		limit: rate.Every(every),
		keys:  make(map[string]*localEntry),
	}
}

func (b *localBucket) take(_ context.Context, key string, now time.Time) (decision, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.cfg.TTL {
		for k, e := range b.keys {
			if now.Sub(e.seen) >= b.cfg.TTL {
				delete(b.keys, k)
			}
		}
		b.lastSweep = now
	}
	e, ok := b.keys[key]
	if !ok {
		e = &localEntry{lim: rate.NewLimiter(b.limit, b.cfg.Capacity)}
		b.keys[key] = e
	}
	e.seen = now

	r := e.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return decision{retry: delay}, nil
	}
	return decision{allowed: true, remaining: int64(e.lim.TokensAt(now))}, nil
}

// NewTokenBucket limits requests per key with a token bucket. Buckets live
// in Redis when rdb is non-nil. Without Redis, or when a Redis call fails,
// an in-process limiter takes over if cfg.LocalFallback is set; otherwise
// the request passes unlimited.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || (rdb == nil && !cfg.LocalFallback) {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	var primary, fallback bucket
	if cfg.LocalFallback {
		fallback = newLocalBucket(cfg)
	}
	if rdb != nil {
		primary = redisBucket{cfg: cfg, rdb: rdb}
	} else {
		primary, fallback = fallback, nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			now := time.Now()
			ctx := c.Request().Context()

			d, err := primary.take(ctx, key, now)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
				}
				if fallback == nil {
					return next(c)
				}
				if d, err = fallback.take(ctx, key, now); err != nil {
					return next(c)
				}
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))

			if !d.allowed {
				secs := int(math.Ceil(d.retry.Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					c.Logger().Infof("[ratelimit] block key=%s remaining=%d retry=%s", key, d.remaining, d.retry)
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			if cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := userKey(c)
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
