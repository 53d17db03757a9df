package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Limiter decides whether a caller identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests with 429 once the caller's bucket is empty.
// Callers are keyed by client IP and route template.
func RateLimit(l Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP() + " " + c.Path()) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
