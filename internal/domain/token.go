package domain

import (
	"context"
	"time"
)

// TokenClaims is the decoded payload of a bearer token. The embedded role
// and organization are advisory only: authorization always works from the
// Principal resolved via the directory, so a role change or deactivation
// takes effect on the next request even while old tokens remain unexpired.
type TokenClaims struct {
	TokenID        string
	Subject        string
	Email          string
	Role           string
	OrganizationID string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

type TokenCodec interface {
	Issue(user User) (string, error)
	// Verify fails with ErrTokenMalformed, ErrTokenSignature or
	// ErrTokenExpired.
	Verify(raw string) (TokenClaims, error)
	WithinRefreshWindow(claims TokenClaims) bool
}

// ReplayGuard marks a token as spent so a near-expiry token cannot be
// refreshed more than once. MarkUsed returns false when the token was
// already spent.
type ReplayGuard interface {
	MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}
