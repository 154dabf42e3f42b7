package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-registration/pkg/response"
)

// KeyFunc builds the rate-limit bucket for a request.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports whether a request bypasses the limiter.
type AllowFunc func(*gin.Context) bool

// Limit is a fixed window: at most Max requests per Window for each key.
type Limit struct {
	Max    int
	Window time.Duration
	Key    KeyFunc // nil means KeyByRouteAndIP
	Allow  AllowFunc
}

// KeyByRouteAndIP gives each client its own budget per matched route.
func KeyByRouteAndIP(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return "rl:" + route + ":" + ipFromCtx(c)
}

// ipFromCtx prefers the address resolved by RealIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// returns {count, pttl}; the window starts on the first hit
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimit enforces l with one Redis round trip per request and sets the
// X-RateLimit-* headers. OPTIONS requests and those approved by l.Allow are
// not counted. Redis errors let the request through. A nil client or a
// non-positive limit disables the middleware.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	key := l.Key
	if key == nil {
		key = KeyByRouteAndIP
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Allow != nil && l.Allow(c)) {
			c.Next()
			return
		}

		res, err := hitScript.Run(c.Request.Context(), rdb, []string{key(c)}, l.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		remaining, reset := window(l.Max, res[0], res[1])

		// https://datatracker.ietf.org/doc/html/rfc6585#section-4
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if res[0] > int64(l.Max) {
			c.Header("Retry-After", strconv.Itoa(reset))
			response.Abort(c, http.StatusTooManyRequests, "too many registration attempts, try again later", nil)
			return
		}
		c.Next()
	}
}

// window converts a bucket count and its PTTL into the remaining budget and
// the seconds until reset, rounded up.
func window(max int, count, pttlMs int64) (remaining, resetSec int) {
	if count < int64(max) {
		remaining = max - int(count)
	}
	if pttlMs > 0 {
		resetSec = int((pttlMs + 999) / 1000)
	}
	return remaining, resetSec
}
