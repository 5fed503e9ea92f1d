package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/handlers"
)

// setupErrorHandling installs the application's HTTP error handler. Errors a
// handler raised deliberately (echo.HTTPError) pass through to echo's
// default handling; anything else is a bug, so it is logged with a full
// stack trace before the client gets a generic 500.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		slog.Error("Internal Server Error (Unhandled)",
			"error", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"stack_trace", string(debug.Stack()),
		)

		if c.Response().Committed {
			return
		}

		resp := handlers.ErrorResponse{
			Code:    "internal_error",
			Message: "Internal Server Error",
		}
		if writeErr := c.JSON(http.StatusInternalServerError, resp); writeErr != nil {
			slog.Error("Failed to write error response", "error", writeErr)
		}
	}
}
