package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/config"
	"github.com/nfrund/remora/internal/database"
)

// DBTimeouts seeds each request's context with the configured database
// timeouts, so queries made on behalf of the request inherit them. Handlers
// can still override per call with the database context keys.
func DBTimeouts(cfg config.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if d := cfg.GetDBQueryTimeout(); d > 0 {
				ctx = context.WithValue(ctx, database.ContextKeyQueryTimeout, d)
			}
			if d := cfg.GetDBExecuteTimeout(); d > 0 {
				ctx = context.WithValue(ctx, database.ContextKeyExecuteTimeout, d)
			}
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
