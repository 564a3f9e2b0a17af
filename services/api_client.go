package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// APIError represents a non-2xx answer from the marketplace API
type APIError struct {
	StatusCode int
	Detail     string // the server's "detail" field, empty when absent
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Detail)
}

// ErrorDetail returns the server-supplied detail of err, or fallback when there is none
func ErrorDetail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// APIClient is the authenticated request channel shared by every component.
// Once a token is set it is sent as a bearer credential on every call.
type APIClient struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// NewAPIClient creates a client for the API served under <origin>/api.
// A zero timeout means calls are never cut short.
func NewAPIClient(origin string, timeout time.Duration) *APIClient {
	return NewAPIClientWithHTTP(strings.TrimRight(origin, "/")+"/api", &http.Client{Timeout: timeout})
}

// NewAPIClientWithHTTP creates a client with a full API base URL and a custom http.Client
func NewAPIClientWithHTTP(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the API base URL requests are built against
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// SetAuthToken sets the default authorization header for all subsequent requests
func (c *APIClient) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// ClearAuthToken removes the default authorization header
func (c *APIClient) ClearAuthToken() {
	c.SetAuthToken("")
}

// AuthToken returns the token currently attached to requests
func (c *APIClient) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// NewRequest builds a request against the API. body is JSON-encoded when not nil.
func (c *APIClient) NewRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// Do executes req and decodes a JSON answer into out (skipped when out is nil)
func (c *APIClient) Do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Detail: decodeDetail(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// Get issues a GET and decodes the answer into out
func (c *APIClient) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.send(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body
func (c *APIClient) Post(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, query, body, out)
}

// Put issues a PUT with an optional JSON body
func (c *APIClient) Put(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.send(ctx, http.MethodPut, path, query, body, out)
}

func (c *APIClient) send(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.NewRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// decodeDetail extracts {"detail": "..."}. Structured details (validation lists) are kept as raw JSON.
func decodeDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	return string(envelope.Detail)
}
