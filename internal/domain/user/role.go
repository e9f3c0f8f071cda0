package user

import (
	"errors"
	"strings"
)

// Role is the single authorization role carried by every user.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

var ErrInvalidRole = errors.New("invalid user role")

// ParseRole normalizes (lowercases+trims) and validates a role string.
func ParseRole(in string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(in)))
	if role.Valid() {
		return role, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether role is one of the allowed role constants.
func (role Role) Valid() bool {
	switch role {
	case RoleRider, RoleDriver, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Role.
func (role Role) String() string {
	return string(role)
}

// CanDrive reports whether the role may perform driver operations. Admins may
// act as drivers in the dashboards, so they pass driver checks too.
func (role Role) CanDrive() bool {
	return role == RoleDriver || role == RoleAdmin
}
