// Package repository exposes the user/organization directory consumed by the
// auth flows.
package repository

import (
	"context"
	"errors"

	"github.com/Baragji/Blueprint-creator/internal/domain"
)

// ErrNotFound is returned when a directory record does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrInvalidPassword is returned by Authenticate when the user exists but the
// presented password does not match. Callers must collapse it with
// ErrNotFound before reporting to clients.
var ErrInvalidPassword = errors.New("repository: invalid password")

// UserDirectory provides user records.
type UserDirectory interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	// Authenticate verifies the email/password pair and returns the user
	// record on success.
	Authenticate(ctx context.Context, email, password string) (domain.User, error)
}

// OrganizationDirectory provides organization records.
type OrganizationDirectory interface {
	CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error)
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
	IsSlugAvailable(ctx context.Context, slug string) (bool, error)
}

// Directory is the full collaborator surface the auth service depends on.
type Directory interface {
	UserDirectory
	OrganizationDirectory
	Ping(ctx context.Context) error
}
