package enums

// ActorRole identifies what an authenticated caller may do.
type ActorRole string

const (
	ActorRoleAdmin  ActorRole = "admin"
	ActorRoleEditor ActorRole = "editor"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleEditor,
}

func (r ActorRole) String() string {
	return string(r)
}

func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts a raw string into an ActorRole.
func ParseActorRole(value string) (ActorRole, bool) {
	role := ActorRole(value)
	if role.IsValid() {
		return role, true
	}
	return "", false
}
