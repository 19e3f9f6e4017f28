package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionFromPayload(t *testing.T) {
	now := time.UnixMilli(1_000_000)

	raw := []byte(`{"accessToken":"acc","refreshToken":"ref","expiresIn":7200,"user":{"id":"u1","email":"a@b.com","username":"ab"}}`)
	s, err := NewSessionFromPayload(raw, "", now)
	require.NoError(t, err)
	assert.Equal(t, "acc", s.AccessToken)
	assert.Equal(t, "ref", s.RefreshToken)
	assert.Equal(t, now.UnixMilli()+7200*1000, s.ExpiresAt)
	assert.Equal(t, "u1", s.User.ID)
}

func TestNewSessionFromPayload_Fallbacks(t *testing.T) {
	now := time.UnixMilli(0)

	// Missing refreshToken falls back to the previous one; missing
	// expiresIn falls back to an hour.
	raw := []byte(`{"accessToken":"acc","user":{"id":"u1"}}`)
	s, err := NewSessionFromPayload(raw, "old-refresh", now)
	require.NoError(t, err)
	assert.Equal(t, "old-refresh", s.RefreshToken)
	assert.Equal(t, int64(3600*1000), s.ExpiresAt)

	// No fallback at all: the access token doubles as refresh token.
	s, err = NewSessionFromPayload(raw, "", now)
	require.NoError(t, err)
	assert.Equal(t, "acc", s.RefreshToken)
}

func TestNewSessionFromPayload_Invalid(t *testing.T) {
	_, err := NewSessionFromPayload([]byte(`{"user":{"id":"u1"}}`), "", time.Now())
	assert.Error(t, err)

	_, err = NewSessionFromPayload([]byte(`{"accessToken":"acc"}`), "", time.Now())
	assert.Error(t, err)

	_, err = NewSessionFromPayload([]byte(`not json`), "", time.Now())
	assert.Error(t, err)
}

func TestActionKindValid(t *testing.T) {
	assert.True(t, ActionCreate.Valid())
	assert.True(t, ActionUpdate.Valid())
	assert.True(t, ActionDelete.Valid())
	assert.False(t, ActionKind("UPSERT").Valid())
	assert.False(t, ActionKind("").Valid())
}
