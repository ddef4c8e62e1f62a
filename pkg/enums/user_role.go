package enums

import "fmt"

// UserRole represents the platform-level role attached to every account.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleStaff    UserRole = "staff"
	UserRoleManager  UserRole = "manager"
	UserRoleAdmin    UserRole = "admin"
	UserRoleDelivery UserRole = "delivery"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleStaff,
	UserRoleManager,
	UserRoleAdmin,
	UserRoleDelivery,
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

// RequiresBranch reports whether accounts with this role must be bound to a branch.
func (u UserRole) RequiresBranch() bool {
	switch u {
	case UserRoleStaff, UserRoleManager, UserRoleDelivery:
		return true
	default:
		return false
	}
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
