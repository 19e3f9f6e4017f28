package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/dbx"
)

// Storage keys, one row per field. The vault owns these keys exclusively.
const (
	keyAccessToken  = "auth_access_token"
	keyRefreshToken = "auth_refresh_token"
	keyTokenExpiry  = "auth_token_expiry"
	keyUserData     = "auth_user_data"
)

var sessionKeys = []string{keyAccessToken, keyRefreshToken, keyTokenExpiry, keyUserData}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save writes all four rows in one transaction so a session is never
// persisted in part.
func (r *SQLiteRepository) Save(ctx context.Context, session *models.Session) error {
	userData, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to encode user snapshot: %w", err)
	}

	values := map[string]string{
		keyAccessToken:  session.AccessToken,
		keyRefreshToken: session.RefreshToken,
		keyTokenExpiry:  strconv.FormatInt(session.ExpiresAt, 10),
		keyUserData:     string(userData),
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range sessionKeys {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO kv (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, key, values[key])
			if err != nil {
				return fmt.Errorf("failed to set kv[%s]: %w", key, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value FROM kv
		WHERE key IN (?, ?, ?, ?)
	`, keyAccessToken, keyRefreshToken, keyTokenExpiry, keyUserData)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session rows: %w", err)
	}

	if len(values) == 0 {
		return nil, common.ErrorNotFound
	}
	if len(values) < len(sessionKeys) {
		// Partial state cannot be trusted; wipe it and report absent.
		_ = r.Clear(ctx)
		return nil, common.ErrorNotFound
	}

	expiresAt, err := strconv.ParseInt(values[keyTokenExpiry], 10, 64)
	if err != nil {
		_ = r.Clear(ctx)
		return nil, common.ErrorNotFound
	}

	var user models.User
	if err := json.Unmarshal([]byte(values[keyUserData]), &user); err != nil {
		_ = r.Clear(ctx)
		return nil, common.ErrorNotFound
	}

	return &models.Session{
		AccessToken:  values[keyAccessToken],
		RefreshToken: values[keyRefreshToken],
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

// Clear removes all four rows in a single statement.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM kv WHERE key IN (?, ?, ?, ?)
	`, keyAccessToken, keyRefreshToken, keyTokenExpiry, keyUserData)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
