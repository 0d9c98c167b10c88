package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/airline-reservation/internal/config"
)

// tokenBucketScript takes one token from the bucket at KEYS[1],
// refilling it first.  State lives in a hash (tokens, refilled_at) so
// server processes sharing Redis share the budget.  Returns
// {allowed, tokens left, retry after ms}.
var tokenBucketScript = redis.NewScript(`
local now, capacity, per, every, ttl_ms =
	tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local refilled_at = tonumber(redis.call('HGET', KEYS[1], 'refilled_at'))
if not tokens or not refilled_at then
	tokens, refilled_at = capacity, now
end

local steps = math.floor(math.max(0, now - refilled_at) / every)
if steps > 0 then
	tokens = math.min(capacity, tokens + steps * per)
	refilled_at = refilled_at + steps * every
end

local allowed, retry = 0, 0
if tokens >= 1 then
	allowed, tokens = 1, tokens - 1
else
	retry = math.max(0, every - (now - refilled_at))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_at', refilled_at)
redis.call('PEXPIRE', KEYS[1], ttl_ms)
return { allowed, tokens, retry }
`)

// CommandLimiter throttles command frames with a Redis token bucket.
// A disabled limiter, or one without a Redis client, allows everything.
type CommandLimiter struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

// NewCommandLimiter returns a limiter; rdb may be nil.
func NewCommandLimiter(cfg config.RateLimitConfig, rdb *redis.Client) *CommandLimiter {
	return &CommandLimiter{cfg: cfg, rdb: rdb}
}

// Enabled reports whether Allow consults Redis.
func (l *CommandLimiter) Enabled() bool {
	return l != nil && l.cfg.Enabled && l.rdb != nil
}

// RateKey identifies the caller of a command.
type RateKey struct {
	IP        string
	SessionID string
	Command   string
}

// Allow takes one token for the caller.  Redis failures fail open: the
// command is allowed and the error is returned for logging.
func (l *CommandLimiter) Allow(ctx context.Context, k RateKey) (bool, time.Duration, error) {
	if !l.Enabled() || !l.cfg.Limits(k.Command) {
		return true, 0, nil
	}
	args := []interface{}{
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		l.cfg.TTL.Milliseconds(),
	}
	vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{BuildRateKey(l.cfg, k)}, args...).Result()
	if err != nil {
		return true, 0, fmt.Errorf("ratelimit: %w", err)
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return true, 0, fmt.Errorf("ratelimit: unexpected script result %#v", vals)
	}
	allowed := asInt64(arr[0]) == 1
	retry := time.Duration(asInt64(arr[2])) * time.Millisecond
	return allowed, retry, nil
}

// asInt64 reads a script reply element; Lua numbers arrive as int64.
func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// keyParts lists the RateKey components each strategy keys on.
var keyParts = map[string][]string{
	"ip":              {"ip"},
	"session":         {"session"},
	"command":         {"cmd"},
	"ip_command":      {"ip", "cmd"},
	"session_command": {"session", "cmd"},
}

// BuildRateKey composes the Redis key for k.  Unknown strategies key on
// ip, session and command together.
func BuildRateKey(cfg config.RateLimitConfig, k RateKey) string {
	values := map[string]string{
		"ip":      orDefault(k.IP, "unknown"),
		"session": orDefault(k.SessionID, "anon"),
		"cmd":     orDefault(k.Command, "none"),
	}
	parts, ok := keyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		parts = []string{"ip", "session", "cmd"}
	}
	key := []string{cfg.Prefix}
	for _, p := range parts {
		key = append(key, p, values[p])
	}
	return strings.Join(key, ":")
}

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}
