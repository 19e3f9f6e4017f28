// Package session decides whether the stored access token is usable and, if
// not, performs the one refresh call everybody waits on. The single-flight
// group is owned by the Refresher instance, not a package global, so it can
// be unit-tested and instantiated per account.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/client/repositories/vault"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/logging"
)

// ExpiryMargin is how close to expiry an access token may get before it is
// refreshed preemptively, absorbing clock skew and request latency.
const ExpiryMargin = 60 * time.Second

type Refresher struct {
	baseURL string
	http    *http.Client
	vault   vault.Repository
	log     logging.Logger
	margin  time.Duration
	sf      singleflight.Group
}

func NewRefresher(baseURL string, httpClient *http.Client, v vault.Repository, log logging.Logger) *Refresher {
	return &Refresher{
		baseURL: baseURL,
		http:    httpClient,
		vault:   v,
		log:     log,
		margin:  ExpiryMargin,
	}
}

// EnsureValid returns a session whose access token is good for at least the
// expiry margin, refreshing it if necessary. N concurrent callers observing
// an expired token produce exactly one network refresh; all of them receive
// its outcome. A failed refresh clears the session and returns
// common.ErrSessionExpired.
func (r *Refresher) EnsureValid(ctx context.Context) (*models.Session, error) {
	sess, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if !r.expiringSoon(sess.AccessToken) {
		return sess, nil
	}

	return r.refresh(ctx, sess)
}

// ForceRefresh rotates the session even if the local expiry check passes.
// The transport calls this when the server rejected a locally-valid token
// (clock skew, server-side revocation).
func (r *Refresher) ForceRefresh(ctx context.Context) (*models.Session, error) {
	sess, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return r.refresh(ctx, sess)
}

func (r *Refresher) load(ctx context.Context) (*models.Session, error) {
	sess, err := r.vault.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAuthRequired
		}
		return nil, err
	}
	return sess, nil
}

// refresh coalesces concurrent callers onto one in-flight exchange. The
// session observed by the caller is passed in so late joiners whose stored
// token was already rotated by an earlier flight can detect that and skip
// the network round trip.
func (r *Refresher) refresh(ctx context.Context, observed *models.Session) (*models.Session, error) {
	v, err, _ := r.sf.Do("refresh", func() (any, error) {
		// Re-load: an earlier flight may have rotated the session between
		// the caller's Load and our turn. One refresh per expiry event.
		current, err := r.vault.Load(ctx)
		if err == nil && current.RefreshToken != observed.RefreshToken {
			return current, nil
		}

		sess, reqErr := r.requestRefresh(ctx, observed.RefreshToken)
		if reqErr != nil {
			// Unconditional logout: there is no degraded authenticated state.
			_ = r.vault.Clear(ctx)
			r.log.Warn(ctx, "refresh failed, session cleared", "err", reqErr)
			return nil, common.ErrSessionExpired
		}

		if err := r.vault.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed session: %w", err)
		}
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Session), nil
}

func (r *Refresher) requestRefresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refresh rejected: status %d", resp.StatusCode)
	}

	return models.NewSessionFromPayload(raw, refreshToken, time.Now())
}

// expiringSoon decodes the access token's claims locally, without verifying
// the signature (only the server can do that), and checks the exp claim
// against the margin. A malformed token is treated as expired.
func (r *Refresher) expiringSoon(accessToken string) bool {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return true
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return time.Now().Add(r.margin).After(exp.Time)
}
