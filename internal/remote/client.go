// Package remote talks to the sweet sync server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dori/sweet/internal/api"
	"github.com/dori/sweet/internal/model"
)

// DefaultTimeout bounds a single request
const DefaultTimeout = 15 * time.Second

// ErrNotConfigured is returned when no server URL is set
var ErrNotConfigured = errors.New("sync server not configured")

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sync server returned %d", e.Status)
	}
	return fmt.Sprintf("sync server returned %d: %s", e.Status, e.Message)
}

// Client is the sync gateway client. Requests are never retried.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. A nil httpClient gets a default with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Configured reports whether the client has somewhere to talk to
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// FetchTasks returns the server-side snapshot for address
func (c *Client) FetchTasks(ctx context.Context, address string) ([]model.Task, error) {
	var resp api.TasksResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks?address="+url.QueryEscape(address), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	if resp.Tasks == nil {
		resp.Tasks = []model.Task{}
	}
	return resp.Tasks, nil
}

// ReplaceTasks overwrites the server-side snapshot for address
func (c *Client) ReplaceTasks(ctx context.Context, address string, tasks []model.Task) error {
	body, err := api.NewBulkRequest(address, tasks)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks/bulk", body, &api.SuccessResponse{}); err != nil {
		return fmt.Errorf("failed to replace tasks: %w", err)
	}
	return nil
}

// GetPreferences returns the stored preferences, or nil when none exist
func (c *Client) GetPreferences(ctx context.Context, address string) (*model.Preferences, error) {
	var resp api.PreferencesResponse
	if err := c.do(ctx, http.MethodGet, "/api/preferences?address="+url.QueryEscape(address), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return resp.Preferences, nil
}

// PutPreferences stores the preferences for address
func (c *Client) PutPreferences(ctx context.Context, address string, prefs model.Preferences) error {
	body := api.PreferencesRequest{
		Address:   address,
		Filter:    prefs.Filter,
		Sort:      prefs.Sort,
		ActiveTag: prefs.ActiveTag,
	}
	if err := c.do(ctx, http.MethodPut, "/api/preferences", body, &api.SuccessResponse{}); err != nil {
		return fmt.Errorf("failed to put preferences: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
