package authz

import "fmt"

// Role is an ordered authorization level. Higher values carry every
// privilege of the levels below them, except where an action explicitly
// requires ownership.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleUser:       "user",
	RoleAdmin:      "admin",
	RoleSuperAdmin: "super_admin",
}

var rolesByName = map[string]Role{
	"user":        RoleUser,
	"admin":       RoleAdmin,
	"super_admin": RoleSuperAdmin,
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "user"
}

// ParseRole maps a stored role string to a Role. Unknown values are rejected
// so a bad row or a forged claim never silently grants privileges.
func ParseRole(s string) (Role, error) {
	role, ok := rolesByName[s]
	if !ok {
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// ValidRoleName reports whether s names one of the assignable roles.
func ValidRoleName(s string) bool {
	_, ok := rolesByName[s]
	return ok
}

// AtLeast reports whether r carries at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Identity is an authenticated principal. A nil *Identity means the caller
// is anonymous.
type Identity struct {
	ID   string
	Role Role
}

// IsOwner reports whether the identity owns a resource authored by authorID.
func (id *Identity) IsOwner(authorID string) bool {
	return id != nil && id.ID == authorID
}
