package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/platform/auth"
)

func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			req := c.Request()
			status := c.Response().Status
			evt := logger.Info()
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
				evt = logger.Warn().Err(err)
				if status >= 500 {
					evt = logger.Error().Err(err)
				}
			}

			evt.
				Str("request_id", rid).
				Str("user_id", auth.UserIDFromContext(req.Context())).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
