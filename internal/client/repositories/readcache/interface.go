// Package readcache keeps the last-known-good payload per collection so list
// screens still render while the backend is unreachable. Snapshots are
// overwritten wholesale on every successful read and never merged.
package readcache

import (
	"context"

	"github.com/roamsync/roamsync/internal/client/models"
)

// Repository stores one snapshot per key. Get returns common.ErrorNotFound
// when nothing has been cached yet.
type Repository interface {
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) (*models.CachedSnapshot, error)
}
