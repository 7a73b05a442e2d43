package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/container"
	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/routes"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/bootstrap"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/server"
)

func main() {
	// Bootstrap common components (config, logger, storage, telemetry)
	components, err := bootstrap.Setup("mixrefresh")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap mixrefresh: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(context.Background())

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer := container.NewContainer(components)

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, components)

	// Setup health check
	setupHealthCheck(e, components)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, components *bootstrap.Components) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(components.Config.Storage.MaxUploadSize))
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"service": components.Config.Service.Name,
				"error":   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": components.Config.Service.Name,
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterMixRoutes(e, serviceContainer)
	routes.RegisterProjectRoutes(e, serviceContainer)
	routes.RegisterAppRoutes(e, serviceContainer)
}

// startServer runs the HTTP server with graceful shutdown
func startServer(e *echo.Echo, components *bootstrap.Components) {
	srv := server.New(components.Config, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
