package qahttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"knowledge-qa/internal/infra/logger"
)

// RouterConfig carries everything NewRouter needs beyond the handler.
type RouterConfig struct {
	ServiceName      string
	EnableTracing    bool
	CORSAllowOrigins []string
	RateLimitRPS     float64
	RateLimitBurst   int
	// Ready reports storage health for /readyz.
	Ready func(ctx context.Context) error
	// OpenAPI enables request validation when non-nil.
	OpenAPI *openapi3.T
	Logger  *slog.Logger
}

// NewRouter builds the echo instance with middleware and every route registered.
func NewRouter(h *Handler, cfg RouterConfig) (*echo.Echo, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if cfg.EnableTracing {
		e.Use(otelecho.Middleware(cfg.ServiceName))
	}
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			c.SetRequest(c.Request().WithContext(logger.WithRequestID(c.Request().Context(), id)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/healthz" || p == "/readyz"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				log.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				log.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if len(cfg.CORSAllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSAllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
	if cfg.OpenAPI != nil {
		validator, err := NewRequestValidator(cfg.OpenAPI)
		if err != nil {
			return nil, err
		}
		e.Use(validator)
	}

	api := e.Group("/api")
	api.POST("/documents/upload", h.UploadDocument)
	api.GET("/documents", h.ListDocuments)
	api.GET("/documents/:id", h.GetDocument)
	api.DELETE("/documents/:id", h.DeleteDocument)
	api.POST("/qa/ask", h.Ask, NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	api.GET("/qa/history", h.History)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if cfg.Ready != nil {
			if err := cfg.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "storage down", "error": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	return e, nil
}
