package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/service"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/bootstrap"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/mixkey"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/storage"
)

// timeDisplayLayout is the human-facing timestamp format used in JSON responses
const timeDisplayLayout = "2006-01-02 15:04:05"

// MixHandler handles mix upload, streaming and listing requests
type MixHandler struct {
	components *bootstrap.Components
	mixService *service.MixService
}

// NewMixHandler creates a new mix handler
func NewMixHandler(components *bootstrap.Components, mixService *service.MixService) *MixHandler {
	return &MixHandler{
		components: components,
		mixService: mixService,
	}
}

// Upload stores a new mix blob
// POST /upload
func (h *MixHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.components.Logger.Error("failed to open uploaded file", "filename", fileHeader.Filename, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read upload")
	}
	defer src.Close()

	result, err := h.mixService.Ingest(
		c.Request().Context(),
		c.FormValue("user_id"),
		c.FormValue("project_id"),
		c.FormValue("mode"),
		c.FormValue("display_name"),
		c.FormValue("version_label"),
		src,
	)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidMode):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid mode. Use 'version' or 'overwrite'.")
		case errors.Is(err, mixkey.ErrInvalidToken):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id or project_id")
		}
		h.components.Logger.Error("failed to store upload", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"filename":      result.Filename,
		"path":          result.Path,
		"user_id":       result.UserID,
		"project_id":    result.ProjectID,
		"mode":          result.Mode,
		"display_name":  result.DisplayName,
		"version_label": result.VersionLabel,
		"created_at":    result.CreatedAt.Format(timeDisplayLayout),
	})
}

// Latest streams the newest mix in scope as a WAV download
// GET /latest?user_id&project_id
func (h *MixHandler) Latest(c echo.Context) error {
	version, path, err := h.mixService.FetchLatest(
		c.Request().Context(),
		c.QueryParam("user_id"),
		c.QueryParam("project_id"),
	)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No files found")
		}
		h.components.Logger.Error("failed to resolve latest mix", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve latest mix")
	}

	return serveWav(c, path, version.Name)
}

// LatestMeta returns metadata about the newest mix, including an audio_url to stream it
// GET /latest_meta?user_id&project_id
func (h *MixHandler) LatestMeta(c echo.Context) error {
	userID := c.QueryParam("user_id")
	projectID := c.QueryParam("project_id")

	version, _, err := h.mixService.FetchLatest(c.Request().Context(), userID, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No files found")
		}
		h.components.Logger.Error("failed to resolve latest mix", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve latest mix")
	}

	audioURL := baseURL(c) + "/latest"
	params := url.Values{}
	if userID != "" {
		params.Set("user_id", userID)
	}
	if projectID != "" {
		params.Set("project_id", projectID)
	}
	if len(params) > 0 {
		audioURL += "?" + params.Encode()
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"filename":   version.Name,
		"created_at": version.CreatedAt.Format(timeDisplayLayout),
		"audio_url":  audioURL,
	})
}

// ListFiles lists mix versions (newest first) for a user/project scope
// GET /files?user_id&project_id&limit
func (h *MixHandler) ListFiles(c echo.Context) error {
	userID := c.QueryParam("user_id")
	projectID := c.QueryParam("project_id")

	limit := h.components.Config.Storage.ListLimitDefault
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = parsed
	}

	versions, err := h.mixService.ListScope(c.Request().Context(), userID, projectID, limit)
	if err != nil {
		h.components.Logger.Error("failed to list mixes", "user_id", userID, "project_id", projectID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list mixes")
	}

	base := baseURL(c)
	out := make([]map[string]interface{}, 0, len(versions))
	for _, v := range versions {
		out = append(out, map[string]interface{}{
			"name":         v.Name,
			"display_name": v.DisplayName,
			"created_at":   v.CreatedAt.Format(timeDisplayLayout),
			"size":         v.Size,
			"is_latest":    v.IsLatest,
			"audio_url":    base + "/file/" + url.PathEscape(v.Name),
		})
	}

	return c.JSON(http.StatusOK, out)
}

// Download streams one stored mix by its full stored name
// GET /file/:filename
func (h *MixHandler) Download(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filename")
	}

	version, path, err := h.mixService.FetchByKey(c.Request().Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		case errors.Is(err, storage.ErrInvalidName):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid filename")
		}
		h.components.Logger.Error("failed to fetch mix", "filename", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch mix")
	}

	return serveWav(c, path, version.Name)
}

// serveWav streams a stored mix as an audio/wav attachment. The content type
// is set before serving because the builtin mime table has no .wav entry.
func serveWav(c echo.Context, path, name string) error {
	c.Response().Header().Set(echo.HeaderContentType, "audio/wav")
	return c.Attachment(path, name)
}

// baseURL reconstructs the externally visible scheme://host prefix of the request
func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
