package enums

import (
	"fmt"
	"strings"
)

// StaffRole is the back-office role carried in admin bearer tokens.
type StaffRole string

const (
	StaffRoleAdmin  StaffRole = "admin"
	StaffRoleViewer StaffRole = "viewer"
)

var validStaffRoles = []StaffRole{
	StaffRoleAdmin,
	StaffRoleViewer,
}

func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the role is known.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStaffRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
