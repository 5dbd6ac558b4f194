// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
)

var ErrUnknownRole = errors.New("unknown role")

// Role is the closed set of user roles.
type Role int

const (
	RoleStudent Role = iota + 1
	RoleAdmin
	RoleSuperAdmin
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "Estudiante"
	case RoleAdmin:
		return "Admin"
	case RoleSuperAdmin:
		return "SuperAdmin"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole converts the stored/wire name into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "Estudiante":
		return RoleStudent, nil
	case "Admin":
		return RoleAdmin, nil
	case "SuperAdmin":
		return RoleSuperAdmin, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RequiresPassword reports whether logins for this role check a password.
func (r Role) RequiresPassword() bool {
	switch r {
	case RoleStudent:
		return false
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return true
}

// CanAdminister reports whether the role may manage an organization's data.
func (r Role) CanAdminister() bool {
	switch r {
	case RoleStudent:
		return false
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanVote reports whether the role casts ballots.
func (r Role) CanVote() bool {
	switch r {
	case RoleStudent:
		return true
	case RoleAdmin, RoleSuperAdmin:
		return false
	}
	return false
}

func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleStudent, RoleAdmin, RoleSuperAdmin:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
