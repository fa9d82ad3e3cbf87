package models

import (
	"time"
)

// OrderItem mirrors the cart line it was created from and is immutable once
// the order exists, except that a custom item's price may be set while the
// order is still pending.
type OrderItem struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	OrderID     uint `json:"order_id" gorm:"not null;index"`
	LineDetails `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
