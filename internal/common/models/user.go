package models

import "time"

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             string    `bson:"_id" json:"id"`
	Username       string    `bson:"username" json:"username"`
	Email          string    `bson:"email,omitempty" json:"email,omitempty"`
	Role           Role      `bson:"role" json:"role"`
	OrganizationID string    `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	TeamID         string    `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Timezone       string    `bson:"timezone" json:"timezone"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
