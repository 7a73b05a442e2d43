package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/container"
	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/handlers"
)

// RegisterProjectRoutes registers project registry routes
func RegisterProjectRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewProjectHandler(c.Components, c.ProjectService)

	e.GET("/projects", h.GetProjects)      // GET /projects?user_id
	e.POST("/projects", h.ReplaceProjects) // POST /projects (wholesale replace)
}
