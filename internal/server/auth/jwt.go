// Package auth mints and verifies the HS256 JWTs the server issues: the
// short-lived access token and the longer-lived refresh token. The two are
// signed with separate secrets so a leaked refresh secret cannot forge
// access tokens and vice versa.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roamsync/roamsync/internal/common"
)

// Claims carries the registered claim set plus the user identity. The email
// is informational; UserID is what the ledger cross-checks during rotation.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// GenerateToken signs a token for userID valid for validityDuration from now.
func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and standard claims of tokenString and
// returns its claim set. Expired tokens surface common.ErrorUnauthorized so
// handlers can map them straight to a 401.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrorUnauthorized
	}

	return claims, nil
}
