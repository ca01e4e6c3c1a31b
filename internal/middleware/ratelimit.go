package middleware

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/service"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit allows one request per cooldown for each client IP and action.
// Requests answered with a 5xx release their slot.
// Without a redis client every request passes. A redis failure lets the
// request through and is logged.
func RateLimit(rdb *redis.Client, action string, cooldown time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || cooldown <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		subject := c.ClientIP()

		allowed, err := service.CheckAndSetRateLimit(ctx, rdb, subject, action, cooldown)
		if err != nil {
			log.Printf("⚠️ Rate limit check failed for %s: %v", subject, err)
			c.Next()
			return
		}
		if !allowed {
			ttl, _ := service.GetRateLimitTTL(ctx, rdb, subject, action)
			if ttl > 0 {
				c.Header("Retry-After", fmt.Sprintf("%.0f", math.Ceil(ttl.Seconds())))
			}
			response.ErrorWithStatus(c, http.StatusTooManyRequests, apperror.Wrap(apperror.ErrRateLimitExceeded, "too many requests, try again later"))
			c.Abort()
			return
		}

		c.Next()

		// a request that failed on our side does not use up the cooldown
		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := service.ClearRateLimit(context.WithoutCancel(ctx), rdb, subject, action); err != nil {
				log.Printf("⚠️ Failed to release rate limit for %s: %v", subject, err)
			}
		}
	}
}
