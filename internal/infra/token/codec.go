package token

import (
	"errors"
	"time"

	"meridian/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "meridian-edged"

type jwtClaims struct {
	jwt.RegisteredClaims
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID string `json:"org_id,omitempty"`
}

// Codec issues and verifies stateless HS256 bearer tokens. Validity is
// purely cryptographic; nothing is stored server-side.
type Codec struct {
	secret        []byte
	lifetime      time.Duration
	refreshWindow time.Duration
	now           func() time.Time
}

func NewCodec(secret string, lifetime, refreshWindow time.Duration, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret:        []byte(secret),
		lifetime:      lifetime,
		refreshWindow: refreshWindow,
		now:           now,
	}
}

func (c *Codec) Issue(user domain.User) (string, error) {
	now := c.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
		Email:          user.Email,
		Role:           user.Role.String(),
		OrganizationID: user.OrganizationID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Codec) Verify(raw string) (domain.TokenClaims, error) {
	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.TokenClaims{}, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.TokenClaims{}, domain.ErrTokenSignature
		default:
			return domain.TokenClaims{}, domain.ErrTokenMalformed
		}
	}
	if !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return domain.TokenClaims{}, domain.ErrTokenMalformed
	}
	out := domain.TokenClaims{
		TokenID:        claims.ID,
		Subject:        claims.Subject,
		Email:          claims.Email,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
		ExpiresAt:      claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func (c *Codec) WithinRefreshWindow(claims domain.TokenClaims) bool {
	now := c.now()
	if !claims.ExpiresAt.After(now) {
		return false
	}
	return claims.ExpiresAt.Sub(now) <= c.refreshWindow
}
