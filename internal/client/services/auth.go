// Package services holds the client's use cases: authenticating, working
// with trips online or offline, and draining the outbox. Everything network
// goes through the transport except the auth endpoints themselves, which
// must work without a session.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/client/repositories/vault"
	"github.com/roamsync/roamsync/internal/client/transport"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/logging"
)

// Sender is the authenticated request path. Satisfied by *transport.Transport.
type Sender interface {
	Send(ctx context.Context, method, path string, payload []byte) (*transport.Response, error)
}

type AuthService struct {
	baseURL   string
	http      *http.Client
	vault     vault.Repository
	transport Sender
	log       logging.Logger
}

func NewAuthService(baseURL string, httpClient *http.Client, v vault.Repository, t Sender, log logging.Logger) *AuthService {
	return &AuthService{baseURL: baseURL, http: httpClient, vault: v, transport: t, log: log}
}

// Login exchanges credentials for a token pair and persists the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	return s.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates the account and, like Login, leaves the client signed in.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*models.Session, error) {
	return s.authenticate(ctx, "/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
}

func (s *AuthService) authenticate(ctx context.Context, path string, creds map[string]string) (*models.Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %s", common.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return nil, common.ErrorAlreadyExists
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s failed: status %d: %s", path, resp.StatusCode, raw)
	}

	sess, err := models.NewSessionFromPayload(raw, "", time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.vault.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.log.Info(ctx, "signed in", "user", sess.User.Email)
	return sess, nil
}

// Logout tells the server to revoke the refresh token, then clears the local
// session regardless. A dead link must never trap the user in an account.
func (s *AuthService) Logout(ctx context.Context) error {
	sess, err := s.vault.Load(ctx)
	if err != nil {
		// Nothing stored, nothing to do.
		return nil
	}

	body, _ := json.Marshal(map[string]string{"refreshToken": sess.RefreshToken})
	if _, err := s.transport.Send(ctx, http.MethodPost, "/auth/logout", body); err != nil {
		s.log.Warn(ctx, "server-side logout failed, clearing locally", "err", err)
	}

	return s.vault.Clear(ctx)
}

// Profile fetches the account behind the current session.
func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	resp, err := s.transport.Send(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("profile failed: status %d", resp.StatusCode)
	}

	// The server wraps the account: {"user": {...}}.
	var wire struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("invalid profile response: %w", err)
	}
	if wire.User == nil {
		return nil, fmt.Errorf("invalid profile response: missing user")
	}
	return wire.User, nil
}

// Session returns the stored session without touching the network.
func (s *AuthService) Session(ctx context.Context) (*models.Session, error) {
	sess, err := s.vault.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAuthRequired
		}
		return nil, err
	}
	return sess, nil
}
