// Package services contains server-side business logic. This file implements
// AuthService: registration, login, refresh-token rotation, revocation, and
// profile lookup. The refresh-token ledger invariant lives here: a token is
// exchangeable exactly once, and every rejection deletes the record it hit.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/dbx"
	"github.com/roamsync/roamsync/internal/server/auth"
	"github.com/roamsync/roamsync/internal/server/config"
	"github.com/roamsync/roamsync/internal/server/models"
	"github.com/roamsync/roamsync/internal/server/repositories/repomanager"
)

// AuthResult is what every successful auth operation returns: a freshly
// minted token pair plus the user snapshot the client persists alongside it.
type AuthResult struct {
	User         models.PublicUser
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access-token lifetime, seconds
}

// AuthService provides authentication-related operations:
//   - Register / Login: create or verify accounts and mint tokens
//   - Refresh: rotate refresh tokens and mint new access tokens
//   - Logout / Revoke: delete ledger records
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		accessSecret:                 []byte(cfg.Auth.AccessSecret),
		refreshSecret:                []byte(cfg.Auth.RefreshSecret),
		accessTokenValidityDuration:  cfg.Auth.AccessTokenTTL,
		refreshTokenValidityDuration: cfg.Auth.RefreshTokenTTL,
	}
}

// Register creates a new account and issues a first token pair.
func (s *AuthService) Register(ctx context.Context, email, password, username, name string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if err := validateCredentials(email, password, username); err != nil {
		return nil, err
	}

	usersRepo := s.repomanager.Users(s.db)

	if _, err := usersRepo.GetByEmail(ctx, email); !errors.Is(err, common.ErrorNotFound) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("email: %w", common.ErrorAlreadyExists)
	}
	if _, err := usersRepo.GetByUsername(ctx, username); !errors.Is(err, common.ErrorNotFound) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("username: %w", common.ErrorAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := usersRepo.Create(ctx, &models.User{
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issueTokens(ctx, user, s.db)
}

// Login verifies credentials, revokes any outstanding refresh tokens for the
// user (a fresh login supersedes prior sessions), and issues a new pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	usersRepo := s.repomanager.Users(s.db)
	user, err := usersRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("error revoking prior tokens: %w", err)
	}

	return s.issueTokens(ctx, user, s.db)
}

// Refresh rotates the presented refresh token: the old ledger record is
// deleted and a new one inserted in a single transaction, so a second
// rotation of the same token fails with ErrInvalidRefreshToken. Every
// rejection path deletes the record it examined.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	record, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if record.ExpiresAt.Before(time.Now()) {
		_ = repo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshExpired
	}

	// Cross-check the claim embedded in the token against the ledger row.
	// A mismatch means the record and the token have desynced; the record
	// cannot be trusted and is dropped.
	claims, err := auth.ParseToken(refreshToken, s.refreshSecret)
	if err != nil {
		_ = repo.Delete(ctx, refreshToken)
		return nil, common.ErrInvalidRefreshToken
	}
	if claims.UserID != record.UserID {
		_ = repo.Delete(ctx, refreshToken)
		return nil, common.ErrTokenMismatch
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, record.UserID)
	if err != nil {
		_ = repo.Delete(ctx, refreshToken)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	var result *AuthResult
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				// A concurrent rotation got here first.
				return common.ErrInvalidRefreshToken
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var issueErr error
		result, issueErr = s.issueTokens(ctx, user, tx)
		return issueErr
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// Logout revokes ledger records: by user and/or by a specific token. A bare
// token with no user id handles stray tokens whose owner is unknown.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)

	if refreshToken != "" {
		if err := repo.Delete(ctx, refreshToken); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if userID == "" {
			return nil
		}
	}
	if userID != "" && refreshToken == "" {
		return repo.DeleteByUser(ctx, userID)
	}
	return nil
}

// Profile returns the public snapshot of the user.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// AccessSecret exposes the access-token signing key for the bearer middleware.
func (s *AuthService) AccessSecret() []byte { return s.accessSecret }

// --- helpers below ---

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, tx dbx.DBTX) (*AuthResult, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, s.accessSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateToken(user.ID, user.Email, s.refreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &AuthResult{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTokenValidityDuration.Seconds()),
	}, nil
}

func validateCredentials(email, password, username string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email: %w", common.ErrorValidation)
	}
	if len(password) < 8 {
		return fmt.Errorf("password too short: %w", common.ErrorValidation)
	}
	if username == "" {
		return fmt.Errorf("username required: %w", common.ErrorValidation)
	}
	return nil
}
