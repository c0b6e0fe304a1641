// Package users contains the user store implementations.
//
// Every implementation enforces email uniqueness itself and reports a
// violation as common.ErrDuplicateUser, so concurrent registrations of the
// same email cannot both succeed.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// FindUserByEmail returns common.ErrorNotFound when no user has email.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser stores a new user and returns it with ID and CreatedAt set.
	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
}
