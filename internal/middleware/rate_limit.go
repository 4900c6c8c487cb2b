package middleware

import (
	"fmt"
	"log"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/common"

	"github.com/labstack/echo/v4"
)

// RateLimit allows each tenant limit requests per window on the routes it
// wraps. Counting happens in Redis so every instance shares the budget; when
// Redis is unreachable requests are let through.
func RateLimit(cache caching.CacheService, scope string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limit <= 0 {
				return next(c)
			}
			tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			limited, err := cache.IsRateLimited(c.Request().Context(), fmt.Sprintf("%s:%s", scope, tenantID), limit, window)
			if err != nil {
				log.Printf("WARN: Rate limit check failed for tenant %s: %v", tenantID, err)
				return next(c)
			}
			if limited {
				return common.SendRateLimitedError(c)
			}
			return next(c)
		}
	}
}
