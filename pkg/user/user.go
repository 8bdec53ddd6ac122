package user

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleParent Role = "parent"
	RoleChild  Role = "child"
	RoleGuest  Role = "guest"
)

// User is a family member.
type User struct {
	Id          int
	Uid         string
	Name        string
	Email       string
	Role        Role
	AvatarUrl   string
	DateOfBirth time.Time // zero when unknown
	// Color is the member's display color for calendar rendering.
	Color string
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleParent, RoleChild, RoleGuest:
		return true
	}
	return false
}
