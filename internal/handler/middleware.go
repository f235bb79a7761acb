package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/labstack/echo/v4"
)

// APIKeyMiddleware rejects requests whose API key header does not match key.
// An empty key disables the check.
func APIKeyMiddleware(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			value := c.Request().Header.Get(internal.APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(value), []byte(key)) != 1 {
				return newError(nil, http.StatusUnauthorized, "invalid api key")
			}
			return next(c)
		}
	}
}
