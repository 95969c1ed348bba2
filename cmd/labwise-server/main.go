package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/labwise/labwise/internal/config"
	"github.com/labwise/labwise/internal/domain/interpretation"
	"github.com/labwise/labwise/internal/platform/llm"
	"github.com/labwise/labwise/internal/platform/metrics"
	"github.com/labwise/labwise/internal/platform/middleware"
)

const (
	serviceName = "LabWise API"
	version     = "0.1.0"

	// disclaimer is product copy served on the root endpoint. Interpretation
	// responses carry the disclaimer the model itself produced.
	disclaimer = "DISCLAIMER: LabWise provides educational information only and is not a " +
		"substitute for professional medical advice, diagnosis, or treatment. " +
		"Always consult with a qualified healthcare provider about your lab results."
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labwise-server",
		Short: "LabWise lab results interpretation API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the LabWise API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", serviceName, version)
		},
	}
}

func runServer() error {
	// Logger
	logger := newLogger(os.Getenv("ENV"))

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger = logger.Level(parseLogLevel(cfg.LogLevel))

	// Metrics
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// Interpretation pipeline
	client := llm.NewClient(cfg.AnthropicAPIKey,
		llm.WithModel(cfg.AnthropicModel),
		llm.WithMaxTokens(cfg.AnthropicMaxTokens),
		llm.WithHTTPClient(&http.Client{Timeout: cfg.ProviderTimeout()}),
		llm.WithLogger(logger),
	)
	svc := interpretation.NewService(client, logger)
	if m != nil {
		svc.SetMetrics(m)
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout()))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))

	// Service endpoints
	e.GET("/", rootHandler)
	e.GET("/health", healthHandler)
	if m != nil {
		e.GET("/metrics", m.Handler())
	}

	h := interpretation.NewHandler(svc)
	h.RegisterRoutes(e)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("model", cfg.AnthropicModel).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newLogger builds the process logger. Development gets the console writer,
// everything else structured JSON on stdout.
func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// parseLogLevel maps a LOG_LEVEL value onto a zerolog level. Unknown or
// empty values fall back to info.
func parseLogLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// httpErrorHandler renders every error as a flat {"error": message} body.
// Non-HTTP errors are logged and reported as a generic 500 so internal
// details never reach the client.
func httpErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		} else {
			logger.Error().Err(err).Msg("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, map[string]string{"error": message})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}

func rootHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message":    serviceName,
		"version":    version,
		"disclaimer": disclaimer,
	})
}

func healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
