package domain

import (
	"context"
	"time"
)

// User is a record in the external user directory. OrganizationID is empty
// until onboarding binds the user to a tenant.
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	Role           Role
	OrganizationID string
	IsActive       bool
	CreatedAt      time.Time
}

func (u User) Principal() Principal {
	return Principal{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		IsActive:       u.IsActive,
	}
}

// Directory is the identity store client. FetchActiveUser returns
// ErrNotFound for missing or inactive users and ErrStoreUnavailable when
// the store itself fails; the two are never conflated.
type Directory interface {
	FetchActiveUser(ctx context.Context, id string) (User, error)
	FetchByEmail(ctx context.Context, email string) (User, error)
}
