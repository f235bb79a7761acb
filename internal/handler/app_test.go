package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHandler_PutConfig(t *testing.T) {
	t.Run("success - configuration file is replaced", func(t *testing.T) {
		// arrange
		previous := internal.Config
		defer func() { internal.Config = previous }()
		path := filepath.Join(t.TempDir(), internal.ConfigFile)
		body := `{"render_retention_hours": 48, "cleanup_interval_hours": 2, "rate_limit": 5}`
		e := echo.New()
		req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := NewConfigHandler(path)

		// act
		err := h.PutConfig(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, internal.NewHoursDuration(48), internal.Config.RenderRetentionHours)
		assert.Equal(t, 2*time.Hour, time.Duration(internal.Config.CleanupIntervalHours))
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		var written map[string]any
		require.NoError(t, json.Unmarshal(b, &written))
		assert.Equal(t, float64(5), written["rate_limit"])
	})
	t.Run("failure - rate limit must be positive", func(t *testing.T) {
		// arrange
		path := filepath.Join(t.TempDir(), internal.ConfigFile)
		e := echo.New()
		req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"rate_limit": 0}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := NewConfigHandler(path)

		// act
		err := h.PutConfig(c)

		// assert
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}
