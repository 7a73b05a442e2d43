package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/container"
	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/handlers"
)

// RegisterMixRoutes registers upload, streaming and listing routes
func RegisterMixRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewMixHandler(c.Components, c.MixService)

	e.POST("/upload", h.Upload)          // POST /upload (multipart form)
	e.GET("/latest", h.Latest)           // GET /latest?user_id&project_id
	e.GET("/latest_meta", h.LatestMeta)  // GET /latest_meta?user_id&project_id
	e.GET("/files", h.ListFiles)         // GET /files?user_id&project_id&limit
	e.GET("/file/:filename", h.Download) // GET /file/justin__default__latest__Mix.wav
}
