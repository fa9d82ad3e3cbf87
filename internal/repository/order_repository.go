package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"homechef/internal/models"
)

// OrderTotals carries the money columns updated together on a status
// change so they can never be written piecemeal.
type OrderTotals struct {
	TotalAmountCents     int64
	OriginalAmountCents  int64
	CancellationFeeCents int64
}

type OrderRepository interface {
	// CreateWithItems persists the order, its line items and the clearing
	// of the originating cart as a single transaction, guarded by the cart
	// version the caller read. A cart mutation landing in between fails the
	// whole checkout with ErrVersionConflict instead of being silently
	// destroyed. Either all of it commits or none of it does.
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, cartID uint, cartVersion int) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByCustomer(ctx context.Context, customerID uint) ([]models.Order, error)
	// UpdateStatus applies a status change with a compare-and-swap on the
	// order version. ErrVersionConflict means a concurrent writer won.
	UpdateStatus(ctx context.Context, orderID uint, version int, status models.OrderStatus, paymentStatus models.PaymentStatus, totals OrderTotals) error
	// UpdateItemPrice sets a custom line item's price and the recomputed
	// order total in one versioned write.
	UpdateItemPrice(ctx context.Context, orderID uint, version int, itemID uint, priceCents, newTotalCents int64) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, cartID uint, cartVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return bumpCartVersion(tx, cartID, cartVersion)
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uint, version int, status models.OrderStatus, paymentStatus models.PaymentStatus, totals OrderTotals) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, version).
		Updates(map[string]interface{}{
			"status":                 status,
			"payment_status":         paymentStatus,
			"total_amount_cents":     totals.TotalAmountCents,
			"original_amount_cents":  totals.OriginalAmountCents,
			"cancellation_fee_cents": totals.CancellationFeeCents,
			"version":                gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrStale(ctx, orderID)
	}
	return nil
}

func (r *orderRepository) UpdateItemPrice(ctx context.Context, orderID uint, version int, itemID uint, priceCents, newTotalCents int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND order_id = ?", itemID, orderID).
			Update("unit_price_cents", priceCents)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		res = tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", orderID, version).
			Updates(map[string]interface{}{
				"total_amount_cents": newTotalCents,
				"version":            gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return nil
	})
}

func (r *orderRepository) missingOrStale(ctx context.Context, orderID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}
