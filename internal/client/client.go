// Package client is the studio's edit-and-save library. It talks to the
// component endpoints with optimistic concurrency: reads carry the entity's
// version token out via ETag, conditional writes send it back via If-Match,
// and a 409 routes the caller into explicit conflict resolution. Session is
// the per-edit state machine; Client and Resolver underneath it are
// stateless.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"auren-studio/internal/domain"
	"auren-studio/pkg/etag"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a bearer token. The endpoint is
// unauthenticated, so a credential-less client can bootstrap itself.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	req := &domain.LoginRequest{Email: email, Password: password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", req, etag.None, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateComponent POSTs a new component. No version token is involved: a new
// entity has none until the server mints its first revision.
func (c *Client) CreateComponent(ctx context.Context, projectID string, draft *Draft) (*domain.Component, error) {
	var component domain.Component
	path := fmt.Sprintf("/projects/%s/components", url.PathEscape(projectID))
	if _, err := c.do(ctx, http.MethodPost, path, draft, etag.None, &component); err != nil {
		return nil, err
	}
	return &component, nil
}

// UpdateComponent PUTs a replacement of the component's editable fields.
// A non-empty token travels as the If-Match precondition; the None token
// makes the write unconditional, which is how a confirmed overwrite ignores
// whatever the server currently holds. A 409 comes back as *ConflictError.
func (c *Client) UpdateComponent(ctx context.Context, projectID, componentID string, draft *Draft, token etag.Token) (*domain.Component, error) {
	var component domain.Component
	path := fmt.Sprintf("/projects/%s/components/%s", url.PathEscape(projectID), url.PathEscape(componentID))
	if _, err := c.do(ctx, http.MethodPut, path, draft, token, &component); err != nil {
		return nil, err
	}
	return &component, nil
}

// GetComponent fetches the component and its current version token from the
// ETag response header.
func (c *Client) GetComponent(ctx context.Context, projectID, componentID string) (*domain.Component, etag.Token, error) {
	var component domain.Component
	path := fmt.Sprintf("/projects/%s/components/%s", url.PathEscape(projectID), url.PathEscape(componentID))
	token, err := c.do(ctx, http.MethodGet, path, nil, etag.None, &component)
	if err != nil {
		return nil, etag.None, err
	}
	return &component, token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, ifMatch etag.Token, out interface{}) (etag.Token, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return etag.None, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return etag.None, fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if t := c.creds.AuthToken(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	if !ifMatch.IsZero() {
		req.Header.Set("If-Match", ifMatch.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return etag.None, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return etag.None, &ConflictError{Message: decodeErrorMessage(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return etag.None, &APIError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return etag.None, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return etag.FromHeader(resp.Header.Get("ETag")), nil
}

func decodeErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error == "" {
		return "request failed"
	}
	return body.Error
}
