package enums

import "fmt"

// UserRole represents a company-level permissions role.
type UserRole string

const (
	UserRoleTechnician UserRole = "TECHNICIAN"
	UserRoleManager    UserRole = "MANAGER"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
)

var validUserRoles = []UserRole{
	UserRoleTechnician,
	UserRoleManager,
	UserRoleAdmin,
	UserRoleSuperAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsDecisionMaker reports whether the role receives verification notifications
// and may manage verification schedules.
func (u UserRole) IsDecisionMaker() bool {
	switch u {
	case UserRoleManager, UserRoleAdmin, UserRoleSuperAdmin:
		return true
	default:
		return false
	}
}

// DecisionMakerRoles returns the roles that qualify as decision makers.
func DecisionMakerRoles() []UserRole {
	return []UserRole{UserRoleManager, UserRoleAdmin, UserRoleSuperAdmin}
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
