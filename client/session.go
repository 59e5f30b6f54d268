// Package client is the Go SDK for the billboard service: session and
// token storage, an authenticated API client, report operations, and
// the application shell state machine that drives a front end.
package client

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"billboard-service/models"

	"github.com/golang-jwt/jwt/v5"
)

// tokenFileName is the fixed storage key the session credential lives
// under.
const tokenFileName = "billboard_inspector_token"

// Session owns the persisted session credential and derives the
// current user from it. Reads and writes are synchronous.
type Session struct {
	path string
}

// NewSession creates a session store rooted at dir. An empty dir uses
// the OS user config directory.
func NewSession(dir string) (*Session, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		dir = filepath.Join(base, "billboard-inspector")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Session{path: filepath.Join(dir, tokenFileName)}, nil
}

// Token returns the stored credential, or "" when absent.
func (s *Session) Token() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return string(data)
}

// SetToken persists a new credential, superseding any previous one
// wholesale.
func (s *Session) SetToken(token string) error {
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// Logout removes the stored credential unconditionally.
func (s *Session) Logout() {
	os.Remove(s.path)
}

// CurrentUser derives the user from the stored credential. Returns nil
// if the credential is absent, malformed, or expired; an expired
// credential is removed from storage before returning.
//
// The token signature is not verified here: the client holds no
// signing secret, and the server re-validates every request.
func (s *Session) CurrentUser() *models.User {
	tokenString := s.Token()
	if tokenString == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	if int64(exp)*1000 < time.Now().UnixMilli() {
		s.Logout()
		return nil
	}

	id, _ := claims["id"].(string)
	name, _ := claims["name"].(string)
	if id == "" {
		return nil
	}

	return &models.User{
		ID:     id,
		Name:   name,
		Avatar: "https://i.pravatar.cc/150?u=" + id,
	}
}
