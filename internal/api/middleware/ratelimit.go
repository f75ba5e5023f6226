package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/api/respond"
	"pomodoro/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fixedWindow increments the counter and starts its window on the first hit.
// It returns the new count and the seconds left in the window.
var fixedWindow = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
if ttl < 0 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

type RateLimiter struct {
	client  redis.Scripter
	limit   int
	window  time.Duration
	exempt  map[string]struct{}
	log     *zap.Logger
	metrics metrics.Metrics
}

func NewRateLimiter(client redis.Scripter, limit int, window time.Duration, log *zap.Logger, m metrics.Metrics, exempt ...string) *RateLimiter {
	set := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		set[p] = struct{}{}
	}

	return &RateLimiter{
		client:  client,
		limit:   limit,
		window:  window,
		exempt:  set,
		log:     log,
		metrics: m,
	}
}

type rateLimitBody struct {
	Detail     string `json:"detail"`
	RetryAfter int64  `json:"retry_after"`
}

func (rl *RateLimiter) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := rl.exempt[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			count, ttl, err := rl.hit(r.Context(), "rate_limit:"+ip+":"+r.URL.Path)
			if err != nil {
				rl.log.Warn("rate limiter unavailable, letting request through", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(rl.limit) {
				rl.metrics.RateLimited(Route(r))
				w.Header().Set("Retry-After", strconv.FormatInt(ttl, 10))
				respond.JSON(w, http.StatusTooManyRequests, rateLimitBody{
					Detail:     fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", ttl),
					RetryAfter: ttl,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) hit(ctx context.Context, key string) (int64, int64, error) {
	res, err := fixedWindow.Run(ctx, rl.client, []string{key}, int64(rl.window/time.Second)).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply %v", res)
	}

	return res[0], res[1], nil
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address. It returns "" when none is usable.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}

	return host
}
