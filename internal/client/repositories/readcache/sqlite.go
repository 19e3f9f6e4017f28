package readcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/common"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_snapshots (key, payload, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at
	`, key, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to cache snapshot[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.CachedSnapshot, error) {
	var (
		payload  string
		cachedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT payload, cached_at FROM cache_snapshots WHERE key = ?
	`, key).Scan(&payload, &cachedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot[%s]: %w", key, err)
	}

	return &models.CachedSnapshot{
		Key:      key,
		Payload:  []byte(payload),
		CachedAt: time.UnixMilli(cachedAt),
	}, nil
}
