package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"meridian/internal/domain"

	"github.com/gin-gonic/gin"
)

const principalContextKey = "principal"

// authRequired gates a route on a verified bearer token plus a live
// directory read. The directory record, not the token claims, becomes the
// Principal, so a deactivation or role change takes effect on the next
// request. Every failure collapses to the same 401 body.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := s.resolvePrincipal(c)
		if err != nil {
			if errors.Is(err, domain.ErrStoreUnavailable) {
				log.Printf("identity store lookup failed: %v", err)
				writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
				return
			}
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}
		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// authOptional attaches a principal when a valid token is presented and
// proceeds without one otherwise. For routes shared by anonymous and
// authenticated callers.
func (s *Server) authOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, err := s.resolvePrincipal(c); err == nil {
			c.Set(principalContextKey, principal)
		}
		c.Next()
	}
}

func (s *Server) resolvePrincipal(c *gin.Context) (domain.Principal, error) {
	raw := extractBearerToken(c.GetHeader("Authorization"))
	if raw == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	claims, err := s.codec.Verify(raw)
	if err != nil {
		return domain.Principal{}, err
	}
	user, err := s.directory.FetchActiveUser(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return domain.Principal{}, err
		}
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return user.Principal(), nil
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func getPrincipal(c *gin.Context) (domain.Principal, bool) {
	raw, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := raw.(domain.Principal)
	return principal, ok
}
