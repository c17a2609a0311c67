package domain

import dErrors "triex/pkg/domain-errors"

// Role is the portal access level attached to a login.
//
// Usage: construct via ParseRole at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOperator  Role = "operator"
	RolePassenger Role = "passenger"
)

// validRoles is the single source of truth for valid roles.
var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleOperator:  true,
	RolePassenger: true,
}

// ParseRole constructs a Role from external input (JWT claims, user rows).
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool { return validRoles[r] }

// IsStaff reports whether the role can use the admin console.
// Permanent deletion additionally requires RoleAdmin.
func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleOperator }

func (r Role) String() string { return string(r) }
