package models

import "time"

// User is a row of the user directory. PasswordHash never leaves the auth
// core; use Public or Sanitized before handing a user to a transport.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the minimal projection returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the client-facing projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Sanitized returns a copy of u with the password hash cleared.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}
