package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/rtcstack/rtc-token-service/pkg/util/errorutil"
)

const rateLimitWindow = time.Minute

// WindowCounter counts hits of a key within a fixed window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit throttles callers by IP to limit requests per minute. Counter failures let the
// request through.
func RateLimit(counter WindowCounter, limit int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "rtc-token:ratelimit:" + c.IP()
		hits, err := counter.IncrWindow(c.UserContext(), key, rateLimitWindow)
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err))
			return c.Next()
		}

		remaining := int64(limit) - hits
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if hits > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rateLimitWindow.Seconds())))
			return apperrors.NewRateLimited("Too many token requests")
		}
		return c.Next()
	}
}
