// Package client talks to a keepsake server over its JSON API.
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
	"time"

	"github.com/jon4hz/keepsake/version"
)

var (
	// ErrInvalidCredentials is returned when the server rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned when the client holds no valid session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError is returned for any response the client does not expect.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// User is a signed in user as reported by the server.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Client represents a keepsake API client. It keeps the session cookie
// between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client for the server at baseURL.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// doRequest performs an HTTP request to the keepsake API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("Keepsake-Client/%s", version.Version))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	return resp, nil
}

func decodeUser(resp *http.Response) (*User, error) {
	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("error decoding user response: %w", err)
	}
	return &user, nil
}

func apiError(resp *http.Response) *APIError {
	var msg errorResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Message == "" {
		msg.Message = strings.TrimSpace(string(raw))
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
}

// Login signs in and keeps the session for later calls.
func (c *Client) Login(ctx context.Context, username, password string, rememberMe bool) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/login", loginRequest{
		Username:   username,
		Password:   password,
		RememberMe: rememberMe,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeUser(resp)
	case http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	default:
		return nil, apiError(resp)
	}
}

// Logout ends the session. It succeeds without a session too.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// User returns the signed in user or ErrNotAuthenticated.
func (c *Client) User(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/user", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeUser(resp)
	case http.StatusUnauthorized:
		return nil, ErrNotAuthenticated
	default:
		return nil, apiError(resp)
	}
}

// CurrentUser returns the signed in user, or nil without an error if there
// is none.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	user, err := c.User(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		return nil, nil
	}
	return user, err
}
