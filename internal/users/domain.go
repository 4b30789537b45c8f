package users

import "time"

// Role enumerates the access roles provisioned for finance team members.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// User represents a finance team member. Accounts are provisioned externally
// and are read-only inside this service.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the assignee projection embedded in task payloads.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Summary returns the projection of the user used in nested responses.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Role: u.Role}
}
