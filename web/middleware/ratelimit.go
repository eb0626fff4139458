package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/metrics"
	"github.com/nbazone/nbazone/web/cache"

	"github.com/gin-gonic/gin"
)

// SignInRateLimit blocks a client IP for the rest of window once it has
// failed limit sign-ins in it. A successful sign-in clears the count. A limit
// of zero disables the check.
func SignInRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf(cache.KeyLoginFailedFmt, c.ClientIP())
		if raw, err := cache.Get(c.Request.Context(), key); err == nil {
			if failed, _ := strconv.Atoi(raw); failed >= limit {
				metrics.RateLimitHits.Inc()
				logger.Warningf("sign in rate limit exceeded for %s (%d failures)", c.ClientIP(), failed)
				c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
				abort(c, http.StatusTooManyRequests, "Too many failed sign in attempts, try again later")
				return
			}
		}

		c.Next()

		status := c.Writer.Status()
		if status == http.StatusOK {
			if err := cache.Delete(c.Request.Context(), key); err != nil {
				logger.Warning("sign in rate limit reset failed:", err)
			}
			return
		}
		if status != http.StatusUnauthorized {
			return
		}
		metrics.FailedLoginAttempts.Inc()
		if _, err := cache.Incr(c.Request.Context(), key, window); err != nil {
			logger.Warning("sign in rate limit increment failed:", err)
		}
	}
}
