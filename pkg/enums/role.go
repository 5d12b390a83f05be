package enums

import "fmt"

// Role names stored in roles.nombre_rol.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "vendedor"
	RoleUser   Role = "usuario"
)

var validRoles = []Role{RoleAdmin, RoleSeller, RoleUser}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
