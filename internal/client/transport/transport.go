// Package transport is the single path for authenticated requests. It
// attaches the bearer token, maps connectivity failures to a sentinel the
// sync engine can branch on, and hides token rotation behind a strict
// refresh-and-retry-once policy.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/logging"
)

// DefaultTimeout bounds a single request attempt.
const DefaultTimeout = 10 * time.Second

// Response is what callers get back for any HTTP status. Non-2xx statuses
// are data, not errors: only failures to communicate surface as errors.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SessionProvider yields a usable session and can force a rotation when the
// server disagrees with the local expiry check.
type SessionProvider interface {
	EnsureValid(ctx context.Context) (*models.Session, error)
	ForceRefresh(ctx context.Context) (*models.Session, error)
}

type Transport struct {
	baseURL  string
	http     *http.Client
	sessions SessionProvider
	log      logging.Logger
	timeout  time.Duration
}

func New(baseURL string, httpClient *http.Client, sessions SessionProvider, log logging.Logger) *Transport {
	return &Transport{
		baseURL:  baseURL,
		http:     httpClient,
		sessions: sessions,
		log:      log,
		timeout:  DefaultTimeout,
	}
}

// Send performs one authenticated request. A nil payload sends no body.
//
// A 401 response triggers exactly one forced refresh followed by one retry;
// a second 401 means the account state changed server-side and surfaces as
// common.ErrSessionExpired. Timeouts and connection failures surface as
// common.ErrNetwork so queued writes are kept rather than dead-lettered.
func (t *Transport) Send(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	sess, err := t.sessions.EnsureValid(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := t.attempt(ctx, method, path, payload, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// The server rejected a token our local check accepted. Rotate once and
	// retry; never loop.
	t.log.Debug(ctx, "server rejected access token, refreshing", "path", path)
	sess, err = t.sessions.ForceRefresh(ctx)
	if err != nil {
		return nil, err
	}

	resp, err = t.attempt(ctx, method, path, payload, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, common.ErrSessionExpired
	}
	return resp, nil
}

func (t *Transport) attempt(ctx context.Context, method, path string, payload []byte, accessToken string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		// Connection refused, DNS failure, deadline exceeded: all of them
		// mean "could not talk to the server", which callers treat uniformly.
		return nil, fmt.Errorf("%w: %s %s: %s", common.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %s", common.ErrNetwork, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
