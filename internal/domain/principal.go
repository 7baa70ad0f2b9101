package domain

import "fmt"

// Role is a closed set. Unknown role strings coming out of the directory
// are a construction-time error, never a value that reaches an
// authorization check.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleManager
	RoleUser
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleManager:
		return "manager"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "manager":
		return RoleManager, nil
	case "user":
		return RoleUser, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", s)
	}
}

// Principal is the identity resolved for a single request. It is rebuilt
// from the directory on every request; token claims never feed it.
type Principal struct {
	ID             string
	Email          string
	Role           Role
	OrganizationID string
	IsActive       bool
}

func (p Principal) HasOrganization() bool {
	return p.OrganizationID != ""
}
