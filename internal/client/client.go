// Package client provides the Questlog API client with a transparent
// refresh-and-retry auth interceptor.
//
// Each call attaches the stored access token. On a 401 the client calls
// POST /refresh_token (the refresh token rides the cookie jar), persists
// the fresh access token, and replays the original request exactly once.
// A failed refresh, or a second 401 after a successful one, is terminal:
// the stored token is cleared, the redirect hook fires, and the call
// returns ErrRedirectToLogin.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
)

// ErrRedirectToLogin is the terminal state of the interceptor: the session
// cannot be recovered without re-authentication. Callers detect it with
// errors.Is and route the user to the login page.
var ErrRedirectToLogin = errors.New("session expired: redirect to login")

// RedirectFunc is invoked once when the interceptor reaches the terminal
// state, before ErrRedirectToLogin is returned. In a browser-like host it
// navigates to the login page; in tests it records the event.
type RedirectFunc func()

// APIError carries a non-401 failure surfaced by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// retryState tracks where a call sits in the refresh protocol.
// Exactly one retry ever happens per call.
type retryState int

const (
	stateInitial retryState = iota
	stateRetried
)

// Client is the Questlog API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	redirect   RedirectFunc

	mu          sync.Mutex
	accessToken string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client. A cookie jar is
// installed if the client has none, because the refresh token only
// travels as a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRedirectFunc sets the terminal-state navigation hook.
func WithRedirectFunc(fn RedirectFunc) Option {
	return func(c *Client) { c.redirect = fn }
}

// WithAccessToken seeds the stored access token.
func WithAccessToken(token string) Option {
	return func(c *Client) { c.accessToken = token }
}

// New constructs a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		redirect:   func() {},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// AccessToken returns the currently stored access token.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// SetAccessToken replaces the stored access token.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

// Get performs a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Do executes a request through the auth interceptor. body (when non-nil)
// is JSON-encoded; out (when non-nil) receives the decoded success
// response.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode body: %w", err)
		}
	}

	state := stateInitial
	for {
		resp, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusUnauthorized {
			return c.finish(resp, out)
		}
		drain(resp)

		if state == stateRetried {
			// A second 401 after a successful refresh. Give up.
			return c.terminate()
		}

		if err := c.refresh(ctx); err != nil {
			return err
		}
		state = stateRetried
	}
}

// Login authenticates with password credentials and stores the returned
// access token; the refresh cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.Do(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result); err != nil {
		return err
	}
	c.SetAccessToken(result.AccessToken)
	return nil
}

// Logout clears the server-side refresh cookie and the stored token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.Do(ctx, http.MethodPost, "/logout", nil, nil)
	c.SetAccessToken("")
	return err
}

// send issues a single HTTP request carrying the current access token.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// refresh calls POST /refresh_token. On success the fresh access token is
// stored; any failure is terminal.
func (c *Client) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refresh_token", nil)
	if err != nil {
		return fmt.Errorf("client: build refresh request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: refresh: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.terminate()
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.AccessToken == "" {
		return c.terminate()
	}

	c.SetAccessToken(result.AccessToken)
	return nil
}

// terminate clears the stored token, fires the redirect hook, and returns
// the terminal sentinel.
func (c *Client) terminate() error {
	c.SetAccessToken("")
	c.redirect()
	return ErrRedirectToLogin
}

// finish decodes a non-401 response: 2xx into out, anything else into an
// APIError carrying the server message.
func (c *Client) finish(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
	}
	return apiErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
