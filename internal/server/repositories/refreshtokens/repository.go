// Package refreshtokens declares the server-side ledger contract for refresh
// tokens: the authoritative mapping from an issued token string to its owner
// and expiry. Rotation and revocation are enforced by deleting records.
package refreshtokens

import (
	"context"
	"time"

	"github.com/roamsync/roamsync/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its token string. Returns
	// common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. It returns
	// common.ErrorNotFound when no row was deleted, so a rotation running
	// inside a transaction can tell that a concurrent rotation already
	// consumed the record.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every outstanding token for userID. Deleting for
	// a user with no tokens is not an error.
	DeleteByUser(ctx context.Context, userID string) error
}
