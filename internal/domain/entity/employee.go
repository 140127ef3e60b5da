package entity

import "time"

// Role is the closed set of account roles. The guard layer compares
// capabilities against this enum, never against free-form strings.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleAdmin      Role = "admin"
)

var validRoles = map[Role]bool{
	RoleEmployee:   true,
	RoleManager:    true,
	RoleAccountant: true,
	RoleAdmin:      true,
}

// IsValid returns true if the role is a known account role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Employee represents a user account. ManagerID, when set, must reference
// an employee holding the manager role; this is enforced at assignment
// time rather than as a database constraint.
type Employee struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	ManagerID    *int64    `json:"manager_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReportsTo returns true if the employee is a direct report of the given
// manager. Only one level is considered; there is no hierarchy traversal.
func (e *Employee) ReportsTo(managerID int64) bool {
	return e.ManagerID != nil && *e.ManagerID == managerID
}
