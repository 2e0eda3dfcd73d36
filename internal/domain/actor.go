package domain

// Role identifies the standing of an actor toward a trip.
type Role string

const (
	RoleRequester Role = "REQUESTER"
	RoleDriver    Role = "DRIVER"
	RoleAdmin     Role = "ADMIN"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleRequester || r == RoleDriver || r == RoleAdmin
}

// Actor is an authenticated caller. Identity verification happens upstream;
// the engine only receives the resolved id and role.
type Actor struct {
	ID   string
	Role Role
}
