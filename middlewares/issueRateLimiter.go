package middlewares

import (
	"net/http"
	"time"

	"seva-be/config"

	"github.com/gin-gonic/gin"
)

const issueLimitKeyPrefix = "seva:issue-limit"

// IssueRateLimiter caps issue submissions per client IP per day using a
// Redis INCR with a TTL. When Redis is not connected the limiter passes
// everything through: rate limiting is protective, never load-bearing.
// Redis errors after connect also fail open, since intake must keep
// working for villagers even when Redis is down.
func IssueRateLimiter(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RedisClient == nil {
			c.Next()
			return
		}

		ctx := config.Ctx
		clientKey := issueLimitKeyPrefix + ":" + c.ClientIP()

		count, err := config.RedisClient.Incr(ctx, clientKey).Result()
		if err != nil {
			c.Next()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			_ = config.RedisClient.Expire(ctx, clientKey, 24*time.Hour).Err()
		}

		if count > int64(limit) {
			retryAfter, _ := config.RedisClient.TTL(ctx, clientKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
