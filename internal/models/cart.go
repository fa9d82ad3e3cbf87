package models

import (
	"time"
)

// Cart is the transient pre-order collection for one customer. A customer
// has at most one active cart; duplicates are reconciled most-recent-wins.
// The cart's chef identity is derived from its items, never stored, so the
// two cannot drift apart.
type Cart struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	CustomerID uint       `json:"customer_id" gorm:"not null;index"`
	Version    int        `json:"version" gorm:"not null;default:1"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ChefID resolves the cart's chef from its line items. Zero means the cart
// is empty and any chef may be introduced.
func (c *Cart) ChefID() uint {
	if len(c.Items) == 0 {
		return 0
	}
	return c.Items[0].ChefID
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// LineItems returns the pricing shape of every item in the cart.
func (c *Cart) LineItems() []LineDetails {
	lines := make([]LineDetails, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, item.LineDetails)
	}
	return lines
}

type CartItem struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	CartID      uint `json:"cart_id" gorm:"not null;index"`
	LineDetails `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
