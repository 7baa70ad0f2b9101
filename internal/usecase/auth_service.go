package usecase

import (
	"context"
	"errors"
	"time"

	"meridian/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// AuthService owns login and refresh. Both end in a fresh directory read:
// the token is proof of possession, never the source of identity.
type AuthService struct {
	Directory domain.Directory
	Codec     domain.TokenCodec
	Guard     domain.ReplayGuard
	Now       func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login verifies credentials against the directory and issues a token.
// Missing user, wrong password and deactivated account all collapse to
// ErrUnauthorized so the response cannot be used as an account oracle.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	if email == "" || password == "" {
		return "", domain.User{}, domain.ErrInvalidInput
	}
	user, err := s.Directory.FetchByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, domain.ErrUnauthorized
		}
		return "", domain.User{}, err
	}
	if !user.IsActive {
		return "", domain.User{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, domain.ErrUnauthorized
	}
	token, err := s.Codec.Issue(user)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// Refresh exchanges a still-valid token inside its refresh window for a new
// one. An expired token is never refreshable, and each token can be
// refreshed at most once while the replay guard remembers it.
func (s *AuthService) Refresh(ctx context.Context, raw string) (string, error) {
	claims, err := s.Codec.Verify(raw)
	if err != nil {
		return "", err
	}
	if !s.Codec.WithinRefreshWindow(claims) {
		return "", domain.ErrRefreshNotEligible
	}
	user, err := s.Directory.FetchActiveUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", err
	}
	if s.Guard != nil {
		ttl := claims.ExpiresAt.Sub(s.now())
		ok, err := s.Guard.MarkUsed(ctx, claims.TokenID, ttl)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.ErrRefreshReplayed
		}
	}
	return s.Codec.Issue(user)
}
