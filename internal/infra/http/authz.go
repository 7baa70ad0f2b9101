package http

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"meridian/internal/domain"

	"github.com/gin-gonic/gin"
)

// requireRoles passes when the principal's role is in the allow-list. An
// empty list means any authenticated role. A request that somehow reaches
// this check without a principal is a 401, never a 403.
func (s *Server) requireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := getPrincipal(c)
		if !ok {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if len(roles) == 0 || slices.Contains(roles, principal.Role) {
			c.Next()
			return
		}
		// Post-authentication, naming the role is safe to disclose.
		writeErrorCode(c, http.StatusForbidden, "FORBIDDEN",
			fmt.Sprintf("role %s is not permitted; requires one of: %s", principal.Role, roleNames(roles)))
	}
}

// requireOrganization is the multi-tenancy boundary: no request reaches an
// organization-scoped downstream without a bound tenant. Row-level
// filtering by that id stays the downstream's job.
func (s *Server) requireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := getPrincipal(c)
		if !ok {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if !principal.HasOrganization() {
			writeErrorCode(c, http.StatusForbidden, "ORGANIZATION_REQUIRED", "organization access required")
			return
		}
		c.Next()
	}
}

func roleNames(roles []domain.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
