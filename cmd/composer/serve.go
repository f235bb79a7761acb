package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/haatos/pipeline-composer/internal/handler"
	"github.com/haatos/pipeline-composer/internal/predefined"
	"github.com/haatos/pipeline-composer/internal/service"
	"github.com/haatos/pipeline-composer/internal/settings"
	"github.com/haatos/pipeline-composer/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the render API and stored compositions over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(settings.Settings, configPath)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", internal.ConfigFile, "Path to the configuration file.")
}

func serve(s *settings.AppSettings, configPath string) error {
	if err := internal.InitializeConfiguration(configPath); err != nil {
		return fmt.Errorf("initialize configuration: %w", err)
	}

	rwdb, err := store.InitDatabase(s, false)
	if err != nil {
		return err
	}
	defer rwdb.Close()
	if err := store.RunMigrations(rwdb, s.DBDriver); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	rdb, err := store.InitDatabase(s, true)
	if err != nil {
		return err
	}
	defer rdb.Close()

	scheduler, err := service.NewScheduler()
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("err shutting down scheduler", "error", err)
		}
	}()

	renderSvc := service.NewRenderService(predefined.MapResolver(internal.Config.Variables))
	compositionSvc := service.NewCompositionService(
		store.NewCompositionSQLStore(rdb, rwdb),
		store.NewRenderSQLStore(rdb, rwdb),
		renderSvc,
		service.NewUUIDGen(),
	)
	if _, err := service.ScheduleRenderCleanup(
		scheduler,
		compositionSvc,
		time.Duration(internal.Config.CleanupIntervalHours),
		time.Duration(internal.Config.RenderRetentionHours),
	); err != nil {
		return fmt.Errorf("schedule render cleanup: %w", err)
	}
	scheduler.Start()

	e := setupEcho(internal.Config.RateLimit)
	g := e.Group(
		"/api",
		middleware.BodyLimit(fmt.Sprintf("%dB", s.MaxBodyBytes)),
		handler.APIKeyMiddleware(s.APIKey),
	)
	handler.SetupRenderRoutes(g, renderSvc)
	handler.SetupCompositionRoutes(g, compositionSvc)
	handler.SetupConfigRoutes(g, configPath)

	if s.APIKey == "" {
		slog.Warn("api key is not set, the api is not protected")
	}
	return internal.GracefulShutdown(e, s.Port)
}

func setupEcho(rateLimit float64) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(
		middleware.Recover(),
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:   true,
			LogURI:      true,
			LogStatus:   true,
			LogLatency:  true,
			HandleError: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				slog.Info("request",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency", v.Latency,
				)
				return nil
			},
		}),
		middleware.CORSWithConfig(internal.GetCORSConfig()),
		middleware.RateLimiterWithConfig(internal.GetRateLimiterConfig(rateLimit)),
	)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	return e
}
