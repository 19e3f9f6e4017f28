// Package users declares the server-side repository contract for account
// records.
package users

import (
	"context"

	"github.com/roamsync/roamsync/internal/server/models"
)

// Repository defines persistence operations for users. Lookups return
// common.ErrorNotFound when no row matches.
type Repository interface {
	// Create inserts the user and returns it with the generated ID set.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
