// Package vault stores the client's session — access token, refresh token,
// expiry, and the user snapshot — as one atomic unit. There is deliberately
// no logic here beyond storage: expiry decisions belong to the session
// refresher.
package vault

import (
	"context"

	"github.com/roamsync/roamsync/internal/client/models"
)

// Repository persists the Session all-or-nothing. Load returns
// common.ErrorNotFound when no session is stored; a partially stored session
// (which only a crash mid-write or external tampering can produce) is wiped
// and reported as absent.
type Repository interface {
	Save(ctx context.Context, session *models.Session) error
	Load(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
}
