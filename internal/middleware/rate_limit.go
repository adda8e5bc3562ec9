package middleware

import (
	"strconv"
	"time"

	"homelinks-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimit allows limit requests per window per caller (session user, else client IP) using a
// Redis fixed window. If Redis is unavailable requests pass through. limit <= 0 disables it.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyPrefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || limit <= 0 {
			return c.Next()
		}
		clientID := "ip:" + c.IP()
		if s := GetSession(c); s != nil {
			clientID = "uid:" + s.UserID.String()
		}
		key := "ratelimit:" + keyPrefix + ":" + clientID
		ctx := c.UserContext()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limit: redis unavailable, allowing request")
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}
		ttl, _ := rdb.TTL(ctx, key).Result()
		if ttl < 0 {
			// Key lost its expiry (e.g. Expire failed after Incr); restore it.
			rdb.Expire(ctx, key, window)
			ttl = window
		}
		remaining := limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if count > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Seconds())))
			return response.Error(c, "Too Many Requests. Try again in "+ttl.Round(time.Second).String(), fiber.StatusTooManyRequests)
		}
		return c.Next()
	}
}
