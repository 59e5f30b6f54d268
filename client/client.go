package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"billboard-service/models"
)

// ErrUnauthorized is returned when the server rejects the request's
// credential.
var ErrUnauthorized = errors.New("unauthorized")

// Client talks to the billboard service. Every outgoing request passes
// through an interceptor that attaches the stored credential as a
// bearer header when present; absent credential means the request goes
// out unauthenticated and the server rejects it.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client
}

// New creates an API client bound to a session store.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http: &http.Client{
			Transport: &authTransport{session: session, base: http.DefaultTransport},
		},
	}
}

// Session returns the client's session store.
func (c *Client) Session() *Session {
	return c.session
}

// authTransport attaches the bearer credential to every request. No
// retry, no backoff: transport and HTTP failures propagate unchanged.
type authTransport struct {
	session *Session
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.session.Token(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}

// Login authenticates against the server, persists the received
// credential and returns the derived user.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp models.TokenResponse
	err := c.postJSON(ctx, "/login", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("login failed: no token in response")
	}
	if err := c.session.SetToken(resp.Token); err != nil {
		return nil, err
	}
	user := c.session.CurrentUser()
	if user == nil {
		return nil, errors.New("invalid token received")
	}
	return user, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.postJSON(ctx, "/register", models.RegisterRequest{Name: name, Email: email, Password: password}, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp models.ErrorResponse
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server error (status %d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
