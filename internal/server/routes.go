package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/handlers"
)

// RegisterRoutes sets up the core application routes. Module routes are not
// registered here; each module registers its own when the tree is
// bootstrapped.
func (s *Server) RegisterRoutes() {
	home := handlers.NewHomeHandler(s.Root)
	s.E.GET("/", home.HomeGet)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
