package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/container"
	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/handlers"
)

// RegisterAppRoutes registers the web UI and PWA routes
func RegisterAppRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAppHandler(c.Components)

	e.GET("/", h.Root)                          // GET / (redirect to /app)
	e.GET("/app", h.App)                        // GET /app (PWA shell)
	e.GET("/player", h.Player)                  // GET /player?user_id&project_id
	e.GET("/manifest.webmanifest", h.Manifest)  // GET /manifest.webmanifest
}
