package services

import (
	"context"
	"time"

	"homechef/internal/models"
)

type EventType string

const (
	EventOrderPlaced    EventType = "order.placed"
	EventOrderAccepted  EventType = "order.accepted"
	EventOrderRejected  EventType = "order.rejected"
	EventOrderCancelled EventType = "order.cancelled"
)

// OrderEvent is emitted on lifecycle changes. Delivery (email, push) is
// external; the engine only decides that a notification must fire and what
// it carries.
type OrderEvent struct {
	Type        EventType   `json:"type"`
	OrderID     uint        `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	CustomerID  uint        `json:"customer_id"`
	ChefID      uint        `json:"chef_id"`
	FeeCents    int64       `json:"fee_cents,omitempty"`
	Recipient   models.Role `json:"recipient"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// EventPublisher hands lifecycle events to the notification dispatcher.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}
