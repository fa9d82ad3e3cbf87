package models

import (
	"time"
)

// Address is a saved delivery address. Managed elsewhere; this service only
// reads it to snapshot its fields onto an order.
type Address struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Line       string    `json:"line" gorm:"not null"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
