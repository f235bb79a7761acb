package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_APIKeyMiddleware(t *testing.T) {
	t.Run("success - matching key is accepted", func(t *testing.T) {
		// arrange
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(internal.APIKeyHeader, "secret")
		rec := httptest.NewRecorder()
		h := APIKeyMiddleware("secret")(func(c echo.Context) error {
			return c.String(http.StatusOK, "rendered")
		})
		e := echo.New()
		c := e.NewContext(req, rec)

		// act
		err := h(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "rendered", rec.Body.String())
	})
	t.Run("success - empty key disables the check", func(t *testing.T) {
		// arrange
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		h := APIKeyMiddleware("")(func(c echo.Context) error {
			return c.String(http.StatusOK, "rendered")
		})
		e := echo.New()
		c := e.NewContext(req, rec)

		// act
		err := h(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("failure - wrong key is rejected", func(t *testing.T) {
		// arrange
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(internal.APIKeyHeader, "guess")
		rec := httptest.NewRecorder()
		called := false
		h := APIKeyMiddleware("secret")(func(c echo.Context) error {
			called = true
			return nil
		})
		e := echo.New()
		c := e.NewContext(req, rec)

		// act
		err := h(c)

		// assert
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
		assert.False(t, called)
	})
	t.Run("failure - missing key is rejected", func(t *testing.T) {
		// arrange
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		h := APIKeyMiddleware("secret")(func(c echo.Context) error {
			return nil
		})
		e := echo.New()
		c := e.NewContext(req, rec)

		// act
		err := h(c)

		// assert
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}
