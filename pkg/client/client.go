// Package client provides a minimal HTTP client for the Studio backend API.
// It covers the operations the harness needs for seeding and cleanup; it is
// not a full API binding.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound is returned when the API responds with 404.
var ErrNotFound = errors.New("not found")

// Client talks to the Studio backend API with bearer token auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// App is a dashboard application as reported by the API.
type App struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Version is one version of an app.
type Version struct {
	ID        string    `json:"id"`
	AppID     string    `json:"app_id"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is a saved editor state of a version.
type Snapshot struct {
	ID        string    `json:"id"`
	VersionID string    `json:"version_id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a Client for the given deployment. timeout covers each request.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Health checks the API health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// ListApps returns all apps visible to the token's account.
func (c *Client) ListApps(ctx context.Context) ([]App, error) {
	var resp struct {
		Apps []App `json:"apps"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/apps", nil, &resp); err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	return resp.Apps, nil
}

// CreateApp creates an app from a template ("blank" when empty) and returns it.
func (c *Client) CreateApp(ctx context.Context, name, template string) (App, error) {
	if template == "" {
		template = "blank"
	}
	req := map[string]string{"name": name, "template": template}
	var app App
	if err := c.do(ctx, http.MethodPost, "/api/apps", req, &app); err != nil {
		return App{}, fmt.Errorf("create app %q: %w", name, err)
	}
	return app, nil
}

// DeleteApp deletes an app and all its versions and snapshots.
func (c *Client) DeleteApp(ctx context.Context, appID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/apps/"+appID, nil, nil); err != nil {
		return fmt.Errorf("delete app %s: %w", appID, err)
	}
	return nil
}

// ListVersions returns the versions of an app, newest first.
func (c *Client) ListVersions(ctx context.Context, appID string) ([]Version, error) {
	var resp struct {
		Versions []Version `json:"versions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/apps/"+appID+"/versions", nil, &resp); err != nil {
		return nil, fmt.Errorf("list versions for %s: %w", appID, err)
	}
	return resp.Versions, nil
}

// ListSnapshots returns the snapshots of a version, newest first.
func (c *Client) ListSnapshots(ctx context.Context, versionID string) ([]Snapshot, error) {
	var resp struct {
		Snapshots []Snapshot `json:"snapshots"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/versions/"+versionID+"/snapshots", nil, &resp); err != nil {
		return nil, fmt.Errorf("list snapshots for %s: %w", versionID, err)
	}
	return resp.Snapshots, nil
}

// DeleteSnapshot removes one snapshot. the backend refuses to delete the
// snapshot backing the active version; that surfaces as an api error.
func (c *Client) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/snapshots/"+snapshotID, nil, nil); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", snapshotID, err)
	}
	return nil
}

// UploadFile puts a file into the app's project tree, creating parent
// directories as needed. used to seed file-explorer fixtures. content goes
// over the wire base64-encoded so binary files (icons, archives) survive
// json's utf-8 string handling byte for byte.
func (c *Client) UploadFile(ctx context.Context, appID, path string, content []byte) error {
	req := map[string]any{
		"path":     path,
		"content":  base64.StdEncoding.EncodeToString(content),
		"encoding": "base64",
	}
	if err := c.do(ctx, http.MethodPut, "/api/apps/"+appID+"/files", req, nil); err != nil {
		return fmt.Errorf("upload %s to %s: %w", path, appID, err)
	}
	return nil
}

// do performs one API request. reqBody and respBody may be nil.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s", method, path, apiError(resp.Body, resp.StatusCode))
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiError extracts the error message from a JSON error body, falling back to
// the raw body or the status code.
func apiError(r io.Reader, status int) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("status %d", status)
	}

	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return fmt.Sprintf("status %d: %s", status, e.Error)
	}
	return fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(data)))
}
