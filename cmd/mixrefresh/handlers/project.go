package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/service"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/bootstrap"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/mixkey"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
)

// ProjectHandler handles project registry requests
type ProjectHandler struct {
	components     *bootstrap.Components
	projectService *service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(components *bootstrap.Components, projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		components:     components,
		projectService: projectService,
	}
}

// GetProjects returns the project registry for one user
// GET /projects?user_id
func (h *ProjectHandler) GetProjects(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		userID = h.components.Config.App.DefaultUserID
	}

	entries, err := h.projectService.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, mixkey.ErrInvalidToken) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		h.components.Logger.Error("failed to read project registry", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read project registry")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":  userID,
		"projects": entries,
	})
}

// ReplaceProjects replaces a user's project registry wholesale
// POST /projects
func (h *ProjectHandler) ReplaceProjects(c echo.Context) error {
	var req struct {
		UserID   string                `json:"user_id"`
		Projects []models.ProjectEntry `json:"projects"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.UserID == "" {
		req.UserID = h.components.Config.App.DefaultUserID
	}

	count, err := h.projectService.Replace(c.Request().Context(), req.UserID, req.Projects)
	if err != nil {
		if errors.Is(err, mixkey.ErrInvalidToken) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		h.components.Logger.Error("failed to replace project registry", "user_id", req.UserID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to replace project registry")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"count":  count,
	})
}
