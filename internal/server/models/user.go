// Package models holds the server-side domain types.
package models

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// User is a stored account. PasswordHash never leaves the service.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Public strips the password hash.
func (u *User) Public() common.PublicUser {
	return common.PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Claim returns the identity fields embedded in tokens.
func (u *User) Claim() Claim {
	return Claim{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Claim is the identity asserted by a token.
type Claim struct {
	ID    string
	Email string
	Name  string
}

func (c Claim) Public() common.PublicUser {
	return common.PublicUser{ID: c.ID, Email: c.Email, Name: c.Name}
}
