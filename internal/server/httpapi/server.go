// Package httpapi serves the token endpoints over HTTP/JSON with echo, along
// with health and Prometheus endpoints.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
)

const (
	codeValidation      = "VALIDATION_ERROR"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeInvalidToken    = "INVALID_TOKEN"
	codeTokenNotFound   = "TOKEN_NOT_FOUND"
	codeTokenExpired    = "TOKEN_EXPIRED"
	codeHTTP            = "HTTP_ERROR"
	codeInternal        = "INTERNAL_SERVER_ERROR"
)

const (
	loggerKey       = "logger"
	shutdownTimeout = 10 * time.Second
)

type HTTPServer struct {
	address string
	echo    *echo.Echo
	logger  logging.Logger
}

// NewHTTPServer wires the routes. metrics may be nil to omit /metrics.
func NewHTTPServer(address string, l logging.Logger, tokens TokenService, metrics http.Handler) *HTTPServer {
	s := &HTTPServer{
		address: address,
		logger:  l.With("module", "http_server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(middleware.BodyLimit("64K"))
	e.Use(s.contextLogger)
	e.Use(s.requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	NewTokenHandler(tokens).RegisterRoutes(e.Group("/v1"))

	s.echo = e
	return s
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- s.echo.Start(s.address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(context.Background(), "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// contextLogger stores a logger tagged with the request id on the echo context.
func (s *HTTPServer) contextLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		c.Set(loggerKey, s.logger.With("request_id", requestID))
		return next(c)
	}
}

func loggerFrom(c echo.Context) logging.Logger {
	if l, ok := c.Get(loggerKey).(logging.Logger); ok {
		return l
	}
	return logging.Nop{}
}

func (s *HTTPServer) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l := loggerFrom(c)
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String()}
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				l.Error(c.Request().Context(), "HTTP request failed", append(args, "error", v.Error.Error())...)
				return nil
			}
			l.Info(c.Request().Context(), "HTTP request", args...)
			return nil
		},
	})
}

// errorHandler renders every handler error as an APIError.
func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var valErr ValidationError
	if errors.As(err, &valErr) {
		_ = sendAPIError(c, http.StatusBadRequest, codeValidation, "One or more fields failed validation", valErr.Errors)
		return
	}

	switch {
	case errors.Is(err, common.ErrInvalidToken):
		_ = sendAPIError(c, http.StatusUnauthorized, codeInvalidToken, "refresh token is invalid", nil)
		return
	case errors.Is(err, common.ErrTokenNotFound):
		_ = sendAPIError(c, http.StatusUnauthorized, codeTokenNotFound, "refresh token not found", nil)
		return
	case errors.Is(err, common.ErrTokenExpired):
		_ = sendAPIError(c, http.StatusUnauthorized, codeTokenExpired, "refresh token expired", nil)
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = sendAPIError(c, httpErr.Code, codeHTTP, fmt.Sprintf("%v", httpErr.Message), nil)
		return
	}

	loggerFrom(c).Error(c.Request().Context(), "unhandled internal error", "error", err.Error())
	_ = sendAPIError(c, http.StatusInternalServerError, codeInternal, "An unexpected error occurred", nil)
}
