package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"homechef/internal/models"
)

// Read-only lookups for the collaborators the engine snapshots from:
// the dish catalog, saved addresses, saved payment methods and users.
// Their lifecycles are managed elsewhere.

type DishRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Dish, error)
}

type AddressRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Address, error)
}

type PaymentMethodRepository interface {
	GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type dishRepository struct{ db *gorm.DB }

func NewDishRepository(db *gorm.DB) DishRepository {
	return &dishRepository{db: db}
}

func (r *dishRepository) GetByID(ctx context.Context, id uint) (*models.Dish, error) {
	var dish models.Dish
	if err := first(r.db, ctx, &dish, id); err != nil {
		return nil, err
	}
	return &dish, nil
}

type addressRepository struct{ db *gorm.DB }

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) GetByID(ctx context.Context, id uint) (*models.Address, error) {
	var address models.Address
	if err := first(r.db, ctx, &address, id); err != nil {
		return nil, err
	}
	return &address, nil
}

type paymentMethodRepository struct{ db *gorm.DB }

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := first(r.db, ctx, &method, id); err != nil {
		return nil, err
	}
	return &method, nil
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := first(r.db, ctx, &user, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func first(db *gorm.DB, ctx context.Context, dest interface{}, id uint) error {
	err := db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
