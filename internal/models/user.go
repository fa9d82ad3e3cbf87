package models

import (
	"time"
)

// User carries the contact fields snapshotted onto an order at checkout and
// the role used by the transition guards. Account management itself lives
// outside this service.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Role      Role      `json:"role" gorm:"not null;default:'customer'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleChef     Role = "chef"
	RoleOperator Role = "operator"
)

// Staff reports whether the role may drive operator-side transitions.
func (r Role) Staff() bool {
	return r == RoleChef || r == RoleOperator
}
