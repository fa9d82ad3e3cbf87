package models

import (
	"time"
)

// Order is created once at checkout and is immutable afterwards except for
// status, payment status, the three money columns and timestamps. Customer
// contact, chef identity, delivery address and payment descriptor are
// snapshots taken at checkout time.
type Order struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OrderNumber string `json:"order_number" gorm:"unique;not null"`
	CustomerID  uint   `json:"customer_id" gorm:"not null;index"`
	ChefID      uint   `json:"chef_id" gorm:"not null;index"`

	// Snapshots, frozen at checkout.
	CustomerName  string `json:"customer_name" gorm:"not null"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	ChefName      string `json:"chef_name" gorm:"not null"`
	AddressLine   string `json:"address_line" gorm:"not null"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	PaymentType   string `json:"payment_type" gorm:"not null"`
	PaymentLast4  string `json:"payment_last4"`

	ScheduledAt   time.Time     `json:"scheduled_at" gorm:"not null"`
	Status        OrderStatus   `json:"status" gorm:"not null;default:'pending'"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"not null;default:'unpaid'"`

	TotalAmountCents     int64 `json:"total_amount_cents" gorm:"not null;default:0"`
	OriginalAmountCents  int64 `json:"original_amount_cents" gorm:"not null;default:0"`
	CancellationFeeCents int64 `json:"cancellation_fee_cents" gorm:"not null;default:0"`

	Version   int         `json:"version" gorm:"not null;default:1"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// LineItems returns the pricing shape of every item on the order.
func (o *Order) LineItems() []LineDetails {
	lines := make([]LineDetails, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, item.LineDetails)
	}
	return lines
}

// HasUnpricedCustomItems reports whether any custom line still lacks a
// positive chef-assigned price.
func (o *Order) HasUnpricedCustomItems() bool {
	for _, item := range o.Items {
		if !item.Priced() {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderRejected  OrderStatus = "rejected"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)
