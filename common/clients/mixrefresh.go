package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MixRefreshClient handles communication with the mixrefresh API
// It uses context to pass the caller's user scope
type MixRefreshClient struct {
	baseURL string
	http    *HTTPClient
	logger  Logger
}

// NewMixRefreshClient creates a new mixrefresh client
func NewMixRefreshClient(baseURL string, logger Logger) *MixRefreshClient {
	// Uploads can carry whole mixes, so the request budget is generous
	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}

	return &MixRefreshClient{
		baseURL: baseURL,
		http:    NewHTTPClient(httpClient, logger),
		logger:  logger,
	}
}

// UploadRequest carries one mix upload
type UploadRequest struct {
	UserID       string
	ProjectID    string
	Mode         string
	DisplayName  string
	VersionLabel string
	Filename     string
	Data         io.Reader
}

// UploadResponse mirrors the POST /upload response
type UploadResponse struct {
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	UserID       string `json:"user_id"`
	ProjectID    string `json:"project_id"`
	Mode         string `json:"mode"`
	DisplayName  string `json:"display_name"`
	VersionLabel string `json:"version_label"`
	CreatedAt    string `json:"created_at"`
}

// FileInfo mirrors one GET /files entry
type FileInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
	Size        int64  `json:"size"`
	IsLatest    bool   `json:"is_latest"`
	AudioURL    string `json:"audio_url"`
}

// LatestMeta mirrors the GET /latest_meta response
type LatestMeta struct {
	Filename  string `json:"filename"`
	CreatedAt string `json:"created_at"`
	AudioURL  string `json:"audio_url"`
}

// ProjectInfo mirrors one project registry entry
type ProjectInfo struct {
	ProjectID    string `json:"project_id"`
	DisplayLabel string `json:"display_label"`
}

// Upload stores one mix
// Falls back to the context user when req.UserID is empty
func (c *MixRefreshClient) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	req.UserID = c.scopeUser(ctx, req.UserID)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"user_id":       req.UserID,
		"project_id":    req.ProjectID,
		"mode":          req.Mode,
		"display_name":  req.DisplayName,
		"version_label": req.VersionLabel,
	}
	for field, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(field, value); err != nil {
			return nil, fmt.Errorf("failed to encode form field %s: %w", field, err)
		}
	}

	filename := req.Filename
	if filename == "" {
		filename = "upload.wav"
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to encode file part: %w", err)
	}
	if _, err := io.Copy(fw, req.Data); err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	resp, err := c.http.DoRequest(ctx, "POST", c.baseURL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to upload mix: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upload request failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var uploaded UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	c.logger.Info("uploaded mix",
		"filename", uploaded.Filename,
		"user_id", uploaded.UserID,
		"project_id", uploaded.ProjectID,
		"mode", uploaded.Mode)

	return &uploaded, nil
}

// ListFiles lists mix versions for a scope, newest first
// A limit of 0 leaves the server default in place
func (c *MixRefreshClient) ListFiles(ctx context.Context, userID, projectID string, limit int) ([]FileInfo, error) {
	userID = c.scopeUser(ctx, userID)

	params := url.Values{}
	if userID != "" {
		params.Set("user_id", userID)
	}
	if projectID != "" {
		params.Set("project_id", projectID)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.http.DoRequest(ctx, "GET", c.withQuery("/files", params), "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("files request failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var files []FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("failed to decode files response: %w", err)
	}

	return files, nil
}

// LatestMeta fetches metadata about the newest mix in a scope
func (c *MixRefreshClient) LatestMeta(ctx context.Context, userID, projectID string) (*LatestMeta, error) {
	userID = c.scopeUser(ctx, userID)

	params := url.Values{}
	if userID != "" {
		params.Set("user_id", userID)
	}
	if projectID != "" {
		params.Set("project_id", projectID)
	}

	resp, err := c.http.DoRequest(ctx, "GET", c.withQuery("/latest_meta", params), "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("latest_meta request failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var meta LatestMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode latest_meta response: %w", err)
	}

	return &meta, nil
}

// DownloadLatest streams the newest mix in a scope
// The caller owns the returned body and must close it
func (c *MixRefreshClient) DownloadLatest(ctx context.Context, userID, projectID string) (io.ReadCloser, error) {
	userID = c.scopeUser(ctx, userID)

	params := url.Values{}
	if userID != "" {
		params.Set("user_id", userID)
	}
	if projectID != "" {
		params.Set("project_id", projectID)
	}

	return c.download(ctx, c.withQuery("/latest", params))
}

// DownloadFile streams one stored mix by its full stored name
// The caller owns the returned body and must close it
func (c *MixRefreshClient) DownloadFile(ctx context.Context, name string) (io.ReadCloser, error) {
	return c.download(ctx, c.baseURL+"/file/"+url.PathEscape(name))
}

// GetProjects fetches the project registry for a user
func (c *MixRefreshClient) GetProjects(ctx context.Context, userID string) ([]ProjectInfo, error) {
	userID = c.scopeUser(ctx, userID)

	params := url.Values{}
	if userID != "" {
		params.Set("user_id", userID)
	}

	resp, err := c.http.DoRequest(ctx, "GET", c.withQuery("/projects", params), "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("projects request failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var projectsResponse struct {
		Projects []ProjectInfo `json:"projects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&projectsResponse); err != nil {
		return nil, fmt.Errorf("failed to decode projects response: %w", err)
	}

	return projectsResponse.Projects, nil
}

// ReplaceProjects replaces the project registry for a user wholesale
// Returns the number of entries the server kept
func (c *MixRefreshClient) ReplaceProjects(ctx context.Context, userID string, projects []ProjectInfo) (int, error) {
	userID = c.scopeUser(ctx, userID)

	payload, err := json.Marshal(map[string]interface{}{
		"user_id":  userID,
		"projects": projects,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode projects payload: %w", err)
	}

	resp, err := c.http.DoRequest(ctx, "POST", c.baseURL+"/projects", "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to replace projects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("replace request failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var replaced struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&replaced); err != nil {
		return 0, fmt.Errorf("failed to decode replace response: %w", err)
	}

	c.logger.Info("replaced project registry", "user_id", userID, "count", replaced.Count)

	return replaced.Count, nil
}

// Health checks whether the service is reachable and its storage is writable
func (c *MixRefreshClient) Health(ctx context.Context) error {
	resp, err := c.http.DoRequest(ctx, "GET", c.baseURL+"/health", "", nil)
	if err != nil {
		return fmt.Errorf("failed to reach service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	return nil
}

// download runs a GET expecting an audio stream back
func (c *MixRefreshClient) download(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.http.DoRequest(ctx, "GET", url, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download mix: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("download request failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// scopeUser falls back to the context user when no explicit user is given
func (c *MixRefreshClient) scopeUser(ctx context.Context, userID string) string {
	if userID != "" {
		return userID
	}
	if fromCtx, ok := GetUserID(ctx); ok {
		return fromCtx
	}
	return ""
}

// withQuery joins the base URL, a path and encoded query parameters
func (c *MixRefreshClient) withQuery(path string, params url.Values) string {
	full := c.baseURL + path
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	return full
}
