// Package ratelimit implements a Redis-backed token bucket used to throttle
// the credential endpoints per client IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "ratelimit:auth:"
	keyTTL    = 120 * time.Second
)

// Result contains the outcome of a limiter check.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes atomically in Redis.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- key TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Limiter throttles clients by hashed IP.
type Limiter struct {
	client            *redis.Client
	requestsPerMinute int
	burst             int
}

// NewLimiter builds a limiter over the shared Redis client.
func NewLimiter(client *redis.Client, requestsPerMinute, burst int) *Limiter {
	return &Limiter{client: client, requestsPerMinute: requestsPerMinute, burst: burst}
}

// Allow checks and consumes one token for the IP. Redis failures fail open:
// an unreachable limiter never blocks sign-in.
func (l *Limiter) Allow(ctx context.Context, ip string) *Result {
	if l == nil || l.client == nil || l.requestsPerMinute <= 0 {
		return &Result{Allowed: true}
	}

	key := keyPrefix + hashIP(ip)
	ratePerSecond := float64(l.requestsPerMinute) / 60.0

	values, err := tokenBucketScript.Run(ctx, l.client,
		[]string{key},
		ratePerSecond, l.burst, time.Now().Unix(), int(keyTTL.Seconds()),
	).Int64Slice()
	if err != nil || len(values) != 3 {
		return &Result{Allowed: true, Remaining: int64(l.burst)}
	}

	return &Result{
		Allowed:    values[0] == 1,
		Remaining:  values[2],
		RetryAfter: time.Duration(values[1]) * time.Second,
	}
}

// hashIP stores a truncated digest instead of the raw address.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
