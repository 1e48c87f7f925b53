package security

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// PaymentRateLimit caps payment verification attempts per client. A
// flood of forged confirmations burns signature checks, so the limit
// is deliberately low.
func (r *RateLimiter) PaymentRateLimit(maxPerMinute int64) echo.MiddlewareFunc {
	return r.fixedWindow("payment", maxPerMinute)
}

// ImportRateLimit caps bulk guest imports, which hold the event lock
// longer than any other operation.
func (r *RateLimiter) ImportRateLimit(maxPerMinute int64) echo.MiddlewareFunc {
	return r.fixedWindow("import", maxPerMinute)
}

func (r *RateLimiter) fixedWindow(scope string, maxPerMinute int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.redis == nil {
				return next(c)
			}

			key := fmt.Sprintf("ratelimit:%s:%s", scope, c.RealIP())
			ctx := c.Request().Context()

			count, err := r.redis.Incr(ctx, key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(ctx, key, time.Minute)
				}
				if count > maxPerMinute {
					return c.JSON(429, map[string]string{
						"error": "Rate limit exceeded. Please try again later.",
					})
				}
			}

			return next(c)
		}
	}
}
