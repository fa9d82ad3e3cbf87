package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"homechef/internal/models"
)

// CartRepository owns cart persistence. Every mutation takes the cart
// version the caller read and fails with ErrVersionConflict if another
// writer got there first, so operations on a single cart are serialized.
type CartRepository interface {
	// FindActiveByCustomer resolves the customer's single active cart,
	// reconciling any duplicates most-recent-wins. Returns (nil, nil) when
	// the customer has no cart.
	FindActiveByCustomer(ctx context.Context, customerID uint) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id uint) (*models.Cart, error)
	AddItem(ctx context.Context, cartID uint, version int, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID uint, version int, itemID uint, quantity int) error
	RemoveItem(ctx context.Context, cartID uint, version int, itemID uint) error
	Clear(ctx context.Context, cartID uint, version int) error
	// ReplaceItems clears the cart and inserts the single candidate item as
	// one atomic unit. This is the "replace" path of chef-conflict
	// resolution.
	ReplaceItems(ctx context.Context, cartID uint, version int, item *models.CartItem) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindActiveByCustomer(ctx context.Context, customerID uint) (*models.Cart, error) {
	var active *models.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var carts []models.Cart
		if err := tx.Where("customer_id = ?", customerID).
			Order("created_at DESC").Find(&carts).Error; err != nil {
			return err
		}
		if len(carts) == 0 {
			return nil
		}

		// Most recent cart wins; stale duplicates and their items go away.
		if len(carts) > 1 {
			staleIDs := make([]uint, 0, len(carts)-1)
			for _, c := range carts[1:] {
				staleIDs = append(staleIDs, c.ID)
			}
			if err := tx.Where("cart_id IN ?", staleIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", staleIDs).Delete(&models.Cart{}).Error; err != nil {
				return err
			}
		}

		var cart models.Cart
		if err := tx.Preload("Items").First(&cart, carts[0].ID).Error; err != nil {
			return err
		}
		active = &cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

func (r *cartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&cart, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) AddItem(ctx context.Context, cartID uint, version int, item *models.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item.CartID = cartID
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return bumpCartVersion(tx, cartID, version)
	})
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID uint, version int, itemID uint, quantity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("id = ? AND cart_id = ?", itemID, cartID).
			Update("quantity", quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return bumpCartVersion(tx, cartID, version)
	})
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID uint, version int, itemID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return bumpCartVersion(tx, cartID, version)
	})
}

func (r *cartRepository) Clear(ctx context.Context, cartID uint, version int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return bumpCartVersion(tx, cartID, version)
	})
}

func (r *cartRepository) ReplaceItems(ctx context.Context, cartID uint, version int, item *models.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		item.CartID = cartID
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return bumpCartVersion(tx, cartID, version)
	})
}

// bumpCartVersion is the optimistic concurrency check shared by all cart
// mutations. Rolling the whole transaction back on a stale version keeps
// the item write and the version check atomic.
func bumpCartVersion(tx *gorm.DB, cartID uint, version int) error {
	res := tx.Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, version).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}
