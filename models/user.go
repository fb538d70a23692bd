package models

// UserRole is the role claim carried by access tokens. Accounts themselves
// live in the identity service that issues the tokens.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RolePlayer    UserRole = "player"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RolePlayer:
		return true
	}
	return false
}
