package db

import (
	"testing"
	"time"

	"meridian/internal/domain"
)

func TestToDomainUser(t *testing.T) {
	org := "org-1"
	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	model := UserModel{
		ID:             "user-1",
		Email:          "ada@example.com",
		PasswordHash:   "$2a$04$hash",
		Role:           "manager",
		OrganizationID: &org,
		IsActive:       true,
		CreatedAt:      created,
	}
	user, err := toDomainUser(model)
	if err != nil {
		t.Fatalf("toDomainUser: %v", err)
	}
	if user.ID != "user-1" || user.Email != "ada@example.com" {
		t.Errorf("user = %+v", user)
	}
	if user.Role != domain.RoleManager {
		t.Errorf("role = %v, want manager", user.Role)
	}
	if user.OrganizationID != "org-1" {
		t.Errorf("organization id = %q", user.OrganizationID)
	}
	if !user.CreatedAt.Equal(created) {
		t.Errorf("created at = %v", user.CreatedAt)
	}
}

func TestToDomainUserWithoutOrganization(t *testing.T) {
	user, err := toDomainUser(UserModel{ID: "user-1", Email: "ada@example.com", Role: "user", IsActive: true})
	if err != nil {
		t.Fatalf("toDomainUser: %v", err)
	}
	if user.OrganizationID != "" {
		t.Errorf("organization id = %q, want empty", user.OrganizationID)
	}
}

// A row whose role column is outside the closed set must never become a
// User; the error surfaces to the caller instead.
func TestToDomainUserUnknownRole(t *testing.T) {
	for _, role := range []string{"superuser", "ADMIN", ""} {
		_, err := toDomainUser(UserModel{ID: "user-1", Email: "ada@example.com", Role: role, IsActive: true})
		if err == nil {
			t.Errorf("role %q: expected an error", role)
		}
	}
}
