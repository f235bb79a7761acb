package handler

import (
	"log/slog"
	"net/http"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/labstack/echo/v4"
)

func SetupConfigRoutes(g *echo.Group, configPath string) {
	h := NewConfigHandler(configPath)
	g.GET("/config", h.GetConfig)
	g.PUT("/config", h.PutConfig)
}

type ConfigHandler struct {
	configPath string
}

func NewConfigHandler(configPath string) *ConfigHandler {
	return &ConfigHandler{configPath}
}

func (h *ConfigHandler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, internal.Config)
}

// PutConfig replaces the configuration file. The server reads it on start.
func (h *ConfigHandler) PutConfig(c echo.Context) error {
	config := internal.DefaultConfiguration()
	if err := c.Bind(config); err != nil {
		return newError(err, http.StatusBadRequest, "invalid config data")
	}
	if config.RateLimit <= 0 {
		return newError(nil, http.StatusBadRequest, "rate_limit must be positive")
	}
	if config.CleanupIntervalHours <= 0 {
		return newError(nil, http.StatusBadRequest, "cleanup_interval_hours must be positive")
	}

	if err := internal.UpdateConfiguration(h.configPath, config); err != nil {
		return newError(
			err,
			http.StatusInternalServerError,
			"unable to update configuration file",
		)
	}
	slog.Info("configuration updated", "path", h.configPath)
	return c.JSON(http.StatusOK, config)
}
