package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"panda/internal/rate"

	"github.com/gin-gonic/gin"
)

// RateLimit allows perMinute requests per caller for action. Authenticated
// callers are keyed by user id, everyone else by client IP. A non-positive
// perMinute disables the limit.
func RateLimit(limiter rate.Limiter, action string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perMinute <= 0 {
			c.Next()
			return
		}

		key := action + ":ip:" + c.ClientIP()
		if user, ok := CurrentUser(c); ok {
			key = action + ":user:" + strconv.FormatUint(uint64(user.ID), 10)
		}

		allowed, retry := limiter.Allow(key, perMinute, time.Minute)
		if !allowed {
			seconds := int(math.Ceil(retry.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}
