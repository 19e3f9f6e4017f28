package models

import "time"

// User is the server-side account record. PasswordHash is a bcrypt hash and
// never leaves the server; Public() is what auth responses embed.
type User struct {
	ID           string
	Email        string
	Username     string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// PublicUser is the client-visible projection of a User.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username, Name: u.Name}
}
