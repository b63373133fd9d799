package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member is a club member and API user with a bcrypt-hashed password.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Username  string    `bun:"username,notnull,unique" json:"username"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	FirstName string    `bun:"first_name,notnull" json:"firstName"`
	LastName  string    `bun:"last_name,notnull" json:"lastName"`
	Password  string    `bun:"password,notnull" json:"-"`
	Role      string    `bun:"role,notnull,default:'member'" json:"role"`
	IsActive  bool      `bun:"is_active,notnull" json:"isActive"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// FullName returns "First Last", falling back to the username.
func (m *Member) FullName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Username
	}
	return name
}

// IsAdmin reports whether the member has the admin role.
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
