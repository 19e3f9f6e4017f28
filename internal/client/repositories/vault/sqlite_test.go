package vault

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func testSession() *models.Session {
	return &models.Session{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    1_700_000_000_000,
		User:         models.User{ID: "u1", Email: "a@b.com", Username: "ab"},
	}
}

func TestSaveAndLoad(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, testSession()))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)
}

func TestSave_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, testSession()))

	replacement := testSession()
	replacement.AccessToken = "new-access"
	replacement.RefreshToken = "new-refresh"
	require.NoError(t, r.Save(ctx, replacement))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-access", got.AccessToken)
	assert.Equal(t, "new-refresh", got.RefreshToken)
}

func TestLoad_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestClear_RemovesAllFields(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, testSession()))
	require.NoError(t, r.Clear(ctx))

	_, err := r.Load(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// Not a single field may survive: no access token without expiry, ever.
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	assert.Zero(t, n)
}

func TestLoad_PartialStateIsWiped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// Simulate a torn write: access token present, the rest missing.
	_, err := db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)`, keyAccessToken, "stray")
	require.NoError(t, err)

	_, err = r.Load(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	assert.Zero(t, n, "partial session must be wiped")
}

func TestLoad_CorruptExpiryIsWiped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, testSession()))
	_, err := db.Exec(`UPDATE kv SET value = 'not-a-number' WHERE key = ?`, keyTokenExpiry)
	require.NoError(t, err)

	_, err = r.Load(ctx)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
