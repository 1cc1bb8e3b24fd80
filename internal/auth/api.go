// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/parley-tui/internal/logging"
)

const (
	// DefaultAPIURL is the HTTP base of a local chat server.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultAPITimeout bounds one auth request.
	DefaultAPITimeout = 15 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 1 << 20

	authPath = "/api/v1/auth"
)

var (
	// ErrMissingCredentials is returned before any request when the username
	// or password is blank.
	ErrMissingCredentials = errors.New("auth: username and password are required")

	// ErrNoAccessToken is returned when a login succeeds without a token.
	ErrNoAccessToken = errors.New("auth: server returned no access token")
)

// AuthError is a non-2xx answer from the auth API.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("auth: request failed (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("auth: %s (HTTP %d)", e.Detail, e.Status)
}

// Unauthorized reports a rejected credential or token.
func (e *AuthError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// Conflict reports a signup for a name that is already taken.
func (e *AuthError) Conflict() bool { return e.Status == http.StatusConflict }

// AsAuthError unwraps err to an *AuthError.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Credentials is the body of signup and login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the login answer.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the public account record.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	IsGuest  bool   `json:"is_guest"`
}

// APIClient talks to the server's account endpoints over HTTP.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewAPIClient returns a client for baseURL (scheme and host, no path).
func NewAPIClient(baseURL string, log *zap.Logger) *APIClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultAPITimeout},
		log:        logging.OrNop(log),
	}
}

// WithTimeout sets the per-request timeout.
func (c *APIClient) WithTimeout(timeout time.Duration) *APIClient {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *APIClient) WithHTTPClient(h *http.Client) *APIClient {
	if h != nil {
		c.httpClient = h
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Signup registers a new account.
func (c *APIClient) Signup(ctx context.Context, creds Credentials) (User, error) {
	var user User
	if err := creds.check(); err != nil {
		return user, err
	}
	err := c.do(ctx, http.MethodPost, authPath+"/signup", "", creds, &user)
	return user, err
}

// Login exchanges credentials for a bearer token.
func (c *APIClient) Login(ctx context.Context, creds Credentials) (TokenResponse, error) {
	var tok TokenResponse
	if err := creds.check(); err != nil {
		return tok, err
	}
	if err := c.do(ctx, http.MethodPost, authPath+"/login", "", creds, &tok); err != nil {
		return tok, err
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return tok, ErrNoAccessToken
	}
	return tok, nil
}

// Me returns the account the token belongs to.
func (c *APIClient) Me(ctx context.Context, token string) (User, error) {
	var user User
	if strings.TrimSpace(token) == "" {
		return user, ErrEmptyToken
	}
	err := c.do(ctx, http.MethodGet, authPath+"/me", token, nil, &user)
	return user, err
}

func (cr Credentials) check() error {
	if strings.TrimSpace(cr.Username) == "" || cr.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("auth: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("auth: read response: %w", err)
	}
	c.log.Debug("auth request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &AuthError{Status: resp.StatusCode, Detail: errorDetail(data, resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("auth: decode response: %w", err)
	}
	return nil
}

// errorDetail reads the "detail" of an error body. Validation failures
// carry a list whose messages are joined.
func errorDetail(data []byte, status int) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			var msgs []string
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return http.StatusText(status)
}
