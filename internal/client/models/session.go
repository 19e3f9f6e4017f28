package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is the client-side snapshot of the authenticated account, persisted
// next to the tokens and refreshed whenever the server returns a newer one.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// Session is the unit the vault stores: all four fields are present or the
// session does not exist. ExpiresAt is epoch milliseconds.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	User         User
}

// AuthPayload is the wire shape of every successful auth response.
type AuthPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         *User  `json:"user"`
}

const defaultExpiresIn = 3600

// NewSessionFromPayload validates an auth response and turns it into a
// Session. A missing refresh token falls back to fallbackRefresh (the
// previous one, or the access token itself for servers that do not rotate);
// a missing expiresIn falls back to one hour.
func NewSessionFromPayload(raw []byte, fallbackRefresh string, now time.Time) (*Session, error) {
	var p AuthPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid auth response: %w", err)
	}
	if p.AccessToken == "" || p.User == nil {
		return nil, fmt.Errorf("invalid auth response: missing accessToken or user")
	}

	refresh := p.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}
	if refresh == "" {
		refresh = p.AccessToken
	}

	expiresIn := p.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	return &Session{
		AccessToken:  p.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    now.UnixMilli() + expiresIn*1000,
		User:         *p.User,
	}, nil
}
