package middleware

import (
    "errors"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/hotelbook/room-reservation/internal/config"
)

// takeToken refills the bucket at KEYS[1] by whole intervals and spends one
// token.  ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s.
// Returns {allowed (0|1), tokens_left, wait_ms}.
var takeToken = redis.NewScript(`
local now, cap, step, every, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local saved = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(saved[1]) or cap
local ts = tonumber(saved[2]) or now

if every > 0 and step > 0 and now > ts then
    local n = math.floor((now - ts) / every)
    if n > 0 then
        tokens = math.min(cap, tokens + n * step)
        ts = ts + n * every
    end
end

local allowed, wait = 0, 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
else
    wait = math.max(0, every - (now - ts))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// verdict is the decoded reply of takeToken.
type verdict struct {
    Allowed    bool
    Remaining  int64
    RetryAfter time.Duration
}

var errBadVerdict = errors.New("ratelimit: unexpected script reply")

func verdictFrom(reply []int64) (verdict, error) {
    if len(reply) != 3 {
        return verdict{}, errBadVerdict
    }
    return verdict{
        Allowed:    reply[0] == 1,
        Remaining:  reply[1],
        RetryAfter: time.Duration(reply[2]) * time.Millisecond,
    }, nil
}

// retryAfterSeconds rounds up so clients never retry too early.
func (v verdict) retryAfterSeconds() int {
    return int(math.Ceil(v.RetryAfter.Seconds()))
}

// NewTokenBucket throttles each client and/or route with a token bucket
// kept in Redis, shared by every replica.  Disabled config or a nil client
// yields a pass-through; Redis errors mid-request let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    limit := strconv.Itoa(cfg.Capacity)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg.Prefix, cfg.KeyStrategy, c)
            reply, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL/time.Second),
            ).Int64Slice()
            if err != nil {
                c.Logger().Warnf("[ratelimit] %s: %v", key, err)
                return next(c)
            }
            v, err := verdictFrom(reply)
            if err != nil {
                c.Logger().Warnf("[ratelimit] %s: %v %v", key, err, reply)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", limit)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.Remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if v.Allowed {
                return next(c)
            }

            secs := v.retryAfterSeconds()
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "rate limit exceeded",
                "retry_after": secs,
            })
        }
    }
}

// keyFields lists which request attributes make up the bucket key for each
// RATE_LIMIT_KEY_STRATEGY value.  Unknown strategies use ip_route.
var keyFields = map[string][]string{
    "ip":       {"ip"},
    "route":    {"route"},
    "ip_route": {"ip", "route"},
}

func rateKey(prefix, strategy string, c echo.Context) string {
    fields, ok := keyFields[strings.ToLower(strategy)]
    if !ok {
        fields = keyFields["ip_route"]
    }
    parts := []string{prefix}
    for _, f := range fields {
        switch f {
        case "ip":
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            parts = append(parts, f, ip)
        case "route":
            parts = append(parts, f, c.Request().Method+" "+c.Path())
        }
    }
    return strings.Join(parts, ":")
}
