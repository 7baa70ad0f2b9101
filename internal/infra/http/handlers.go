package http

import (
	"errors"
	"log"
	"net/http"

	"meridian/internal/domain"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
	IsActive       bool   `json:"is_active"`
}

func toUserResponse(p domain.Principal) userResponse {
	return userResponse{
		ID:             p.ID,
		Email:          p.Email,
		Role:           p.Role.String(),
		OrganizationID: p.OrganizationID,
		IsActive:       p.IsActive,
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "email and password are required")
		return
	}
	raw, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": raw,
		"user":  toUserResponse(user.Principal()),
	})
}

// handleLogout exists for the client's sake; there is no server-side
// session to tear down with stateless tokens.
func (s *Server) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSession(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(principal)})
}

func (s *Server) handleRefresh(c *gin.Context) {
	raw := extractBearerToken(c.GetHeader("Authorization"))
	if raw == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}
	refreshed, err := s.auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshNotEligible) {
			writeErrorCode(c, http.StatusBadRequest, "REFRESH_NOT_ELIGIBLE", "token is not yet within its refresh window")
			return
		}
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": refreshed})
}

// handleGetUser is active-only like every other directory read; a
// deactivated account reads as absent.
func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.directory.FetchActiveUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		log.Printf("directory lookup failed: %v", err)
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user.Principal())})
}

func (s *Server) handleMeta(c *gin.Context) {
	products := make([]string, 0, len(s.bindings))
	for _, b := range s.bindings {
		products = append(products, b.Name)
	}
	out := gin.H{"products": products}
	if principal, ok := getPrincipal(c); ok {
		out["organization_id"] = principal.OrganizationID
	}
	c.JSON(http.StatusOK, out)
}

// handleHealth reports process liveness and which downstreams are
// configured, not their live health.
func (s *Server) handleHealth(c *gin.Context) {
	downstreams := make([]string, 0, len(s.bindings))
	for _, b := range s.bindings {
		downstreams = append(downstreams, b.Name)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     "edged",
		"downstreams": downstreams,
	})
}

// writeAuthError collapses every credential failure to the same generic
// 401 so responses cannot be probed for which check failed.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid input")
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenSignature),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrRefreshReplayed):
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
	default:
		log.Printf("auth request failed: %v", err)
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
