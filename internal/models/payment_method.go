package models

import (
	"time"
)

// PaymentMethod is a saved payment instrument. Only the non-reversible
// descriptor (method type + last four digits) is ever stored or copied onto
// an order; full card data never enters this system.
type PaymentMethod struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	MethodType string    `json:"method_type" gorm:"not null"` // e.g. "card", "cash"
	Last4      string    `json:"last4"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Descriptor is the display-safe summary snapshotted onto orders.
func (p *PaymentMethod) Descriptor() (methodType, last4 string) {
	return p.MethodType, p.Last4
}
