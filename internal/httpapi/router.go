package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ryabkov82/backoffice-server/internal/logger"
	"github.com/ryabkov82/backoffice-server/internal/version"
)

// RouterConfig holds HTTP settings
type RouterConfig struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	JWTSecret      string
	StaticDir      string // built SPA, optional
}

// NewRouter sets up HTTP routes
func NewRouter(h *Handler, cfg RouterConfig, log *zap.Logger) *echo.Echo {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(zap.NewStdLog(log.Named("echo")).Writer())
	e.HTTPErrorHandler = errorHandler(log)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.EchoRequestLogger(log.Named("http")))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// unauthenticated
	e.GET("/health", health)
	e.GET("/version", getVersion)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", SessionMiddleware(cfg.JWTSecret, log.Named("auth")))
	if cfg.MaxUploadBytes > 0 {
		api.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.MaxUploadBytes)))
	}
	h.customers.register(api.Group("/customers"))
	h.suppliers.register(api.Group("/suppliers"))

	if cfg.StaticDir != "" {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  cfg.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api/") || p == "/api"
			},
		}))
	}

	return e
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// getVersion handles GET /version
func getVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}

// errorHandler renders errors no handler turned into a response
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}

		if code >= http.StatusInternalServerError {
			log.Error("unhandled error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, errorBody(msg))
		}
		if err != nil {
			log.Error("failed to send error response", zap.Error(err))
		}
	}
}
