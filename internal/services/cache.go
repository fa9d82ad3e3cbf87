package services

import (
	"context"
	"time"
)

// SummaryCache caches derived cart and order summaries. Everything in it is
// recomputable from line items, so cache loss or staleness is harmless and
// cache failures never fail a business operation.
type SummaryCache interface {
	GetCart(ctx context.Context, customerID uint, dest interface{}) error
	SetCart(ctx context.Context, customerID uint, value interface{}, ttl time.Duration) error
	DeleteCart(ctx context.Context, customerID uint) error
	GetOrder(ctx context.Context, orderID uint, dest interface{}) error
	SetOrder(ctx context.Context, orderID uint, value interface{}, ttl time.Duration) error
	DeleteOrder(ctx context.Context, orderID uint) error
}
