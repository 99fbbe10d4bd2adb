package auth

import "errors"

// Role represents an authorisation tier.
type Role string

const (
	// RoleViewer may only inspect the machine.
	RoleViewer Role = "viewer"

	// RoleOperator may also add and remove devices.
	RoleOperator Role = "operator"

	// RoleAdmin may also reset the whole machine.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole returns true if r is one of ValidRoles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Domain errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
	ErrForbidden    = errors.New("insufficient permissions")
)
