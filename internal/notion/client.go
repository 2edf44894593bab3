// Package notion is a minimal Notion API client covering database queries
// and page writes used by sync.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/retry"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com"

	// APIVersion is sent as the Notion-Version header.
	APIVersion = "2022-06-28"

	defaultTimeout = 30 * time.Second
	maxPageSize    = 100
)

// APIError is returned for any HTTP status >= 400. Errors that retrying
// cannot fix are additionally marked with retry.Permanent.
type APIError struct {
	Status  int
	Code    string
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("notion %s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("notion %s %s: %d: %s", e.Method, e.Path, e.Status, msg)
}

// Temporary reports whether the request may succeed when repeated.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Client talks to the Notion REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l *zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client authenticated with token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &domain.ConfigError{Field: "notion.api_key", Message: "notion api key is required"}
	}
	nop := zerolog.Nop()
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notion %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("notion request")

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Method: method, Path: path}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		if !apiErr.Temporary() {
			return retry.Permanent(apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// queryDatabase pages through every result of a database query.
func (c *Client) queryDatabase(ctx context.Context, databaseID string, filter any) ([]page, error) {
	path := "/v1/databases/" + databaseID + "/query"
	var pages []page
	cursor := ""
	for {
		req := queryRequest{Filter: filter, PageSize: maxPageSize, StartCursor: cursor}
		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}
