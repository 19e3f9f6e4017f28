package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/logging"
)

type memVault struct {
	mu   sync.Mutex
	sess *models.Session
}

func (v *memVault) Save(_ context.Context, s *models.Session) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := *s
	v.sess = &cp
	return nil
}

func (v *memVault) Load(_ context.Context) (*models.Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sess == nil {
		return nil, common.ErrorNotFound
	}
	cp := *v.sess
	return &cp, nil
}

func (v *memVault) Clear(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sess = nil
	return nil
}

func mintToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		Subject:   "u1",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return s
}

func seedVault(t *testing.T, accessTTL time.Duration) *memVault {
	t.Helper()
	return &memVault{sess: &models.Session{
		AccessToken:  mintToken(t, accessTTL),
		RefreshToken: "refresh-old",
		ExpiresAt:    time.Now().Add(accessTTL).UnixMilli(),
		User:         models.User{ID: "u1", Email: "a@b.c", Username: "a"},
	}}
}

// refreshServer serves /auth/refresh, counts calls, and answers with a fresh
// token pair.
func refreshServer(t *testing.T, calls *atomic.Int32, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		calls.Add(1)
		time.Sleep(delay)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  mintToken(t, time.Hour),
			"refreshToken": "refresh-new",
			"expiresIn":    3600,
			"user":         models.User{ID: "u1", Email: "a@b.c", Username: "a"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEnsureValid_FreshTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := refreshServer(t, &calls, 0)
	v := seedVault(t, time.Hour)

	r := NewRefresher(srv.URL, srv.Client(), v, logging.Discard())

	sess, err := r.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-old", sess.RefreshToken)
	assert.Zero(t, calls.Load())
}

func TestEnsureValid_WithinMarginRefreshes(t *testing.T) {
	var calls atomic.Int32
	srv := refreshServer(t, &calls, 0)
	// Valid for 30s, which is inside the 60s margin.
	v := seedVault(t, 30*time.Second)

	r := NewRefresher(srv.URL, srv.Client(), v, logging.Discard())

	sess, err := r.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-new", sess.RefreshToken)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEnsureValid_ConcurrentCallersSingleRefresh(t *testing.T) {
	var calls atomic.Int32
	srv := refreshServer(t, &calls, 50*time.Millisecond)
	v := seedVault(t, -time.Minute)

	r := NewRefresher(srv.URL, srv.Client(), v, logging.Discard())

	const n = 25
	var wg sync.WaitGroup
	sessions := make([]*models.Session, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i], errs[i] = r.EnsureValid(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "all callers must share one refresh")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "refresh-new", sessions[i].RefreshToken)
	}

	stored, err := v.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-new", stored.RefreshToken)
}

func TestEnsureValid_NoSession(t *testing.T) {
	r := NewRefresher("http://unused", http.DefaultClient, &memVault{}, logging.Discard())

	_, err := r.EnsureValid(context.Background())
	assert.ErrorIs(t, err, common.ErrAuthRequired)
}

func TestEnsureValid_MalformedTokenTreatedAsExpired(t *testing.T) {
	var calls atomic.Int32
	srv := refreshServer(t, &calls, 0)
	v := &memVault{sess: &models.Session{
		AccessToken:  "not-a-jwt",
		RefreshToken: "refresh-old",
		User:         models.User{ID: "u1"},
	}}

	r := NewRefresher(srv.URL, srv.Client(), v, logging.Discard())

	sess, err := r.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-new", sess.RefreshToken)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEnsureValid_RefreshRejectedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid refresh token"}`, http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	v := seedVault(t, -time.Minute)

	r := NewRefresher(srv.URL, srv.Client(), v, logging.Discard())

	_, err := r.EnsureValid(context.Background())
	assert.ErrorIs(t, err, common.ErrSessionExpired)

	_, err = v.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrorNotFound, "failed refresh must log the client out")
}

func TestForceRefresh_IgnoresLocalExpiry(t *testing.T) {
	var calls atomic.Int32
	srv := refreshServer(t, &calls, 0)
	v := seedVault(t, time.Hour)

	r := NewRefresher(srv.URL, srv.Client(), v, logging.Discard())

	sess, err := r.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-new", sess.RefreshToken)
	assert.Equal(t, int32(1), calls.Load())
}
