package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"workshop/internal/cache"
)

// RateLimit allows limit requests per window from one client IP, counted in
// a fixed Redis window under prefix. A zero limit or a disabled cache turns
// the limiter off, and Redis failures let requests through.
func RateLimit(client *cache.Client, prefix string, limit int, window time.Duration) echo.MiddlewareFunc {
	if limit <= 0 || client == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if window < time.Second {
		window = time.Minute
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			bucket := time.Now().Unix() / int64(window/time.Second)
			key := prefix + ":" + ip + ":" + strconv.FormatInt(bucket, 10)

			n := client.Incr(c.Request().Context(), key, window)
			if n == 0 {
				return next(c)
			}

			remaining := int64(limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window/time.Second)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
