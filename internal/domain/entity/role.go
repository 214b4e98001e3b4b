package entity

import (
	"fmt"
	"strings"
)

// Role identifies what an actor is allowed to do in the approval chain.
// It is a closed set; actor identity itself (name, credentials) is supplied
// by the authentication layer and never validated here.
type Role string

const (
	RoleLecturer    Role = "LECTURER"
	RoleCoordinator Role = "COORDINATOR"
	RoleManager     Role = "MANAGER"
	RoleHR          Role = "HR"
)

var validRoles = map[Role]bool{
	RoleLecturer:    true,
	RoleCoordinator: true,
	RoleManager:     true,
	RoleHR:          true,
}

// ParseRole converts an externally supplied role string into a Role.
// Unknown strings are rejected rather than compared ad hoc downstream.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !validRoles[role] {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
