package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homechef/internal/models"
	"homechef/internal/pricing"
	"homechef/internal/repository"
)

// MinScheduleLead is the minimum gap between checkout and the requested
// service time.
const MinScheduleLead = 2 * time.Hour

type CheckoutRequest struct {
	AddressID       uint      `json:"address_id" binding:"required"`
	PaymentMethodID uint      `json:"payment_method_id" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
}

type CheckoutService interface {
	// Checkout converts the customer's cart into a persisted order plus
	// line items and clears the cart, as one atomic unit. On any failure
	// the cart is left intact and no order exists.
	Checkout(ctx context.Context, customerID uint, req CheckoutRequest) (*OrderView, error)
}

type checkoutService struct {
	carts     repository.CartRepository
	orders    repository.OrderRepository
	dishes    repository.DishRepository
	addresses repository.AddressRepository
	payments  repository.PaymentMethodRepository
	users     repository.UserRepository
	publisher EventPublisher
	cache     SummaryCache
	cacheTTL  time.Duration
	logger    *zap.Logger
	nowFunc   func() time.Time
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	dishes repository.DishRepository,
	addresses repository.AddressRepository,
	payments repository.PaymentMethodRepository,
	users repository.UserRepository,
	publisher EventPublisher,
	cache SummaryCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		carts:     carts,
		orders:    orders,
		dishes:    dishes,
		addresses: addresses,
		payments:  payments,
		users:     users,
		publisher: publisher,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, customerID uint, req CheckoutRequest) (*OrderView, error) {
	now := s.nowFunc()
	if req.ScheduledAt.Before(now.Add(MinScheduleLead)) {
		return nil, ErrSchedulingTooSoon
	}

	cart, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := s.verifyItems(ctx, cart); err != nil {
		return nil, err
	}

	chefID := cart.ChefID()
	chef, err := s.users.GetByID(ctx, chefID)
	if err != nil {
		return nil, fmt.Errorf("resolve chef %d: %w", chefID, err)
	}
	customer, err := s.users.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %d: %w", customerID, err)
	}

	address, err := s.addresses.GetByID(ctx, req.AddressID)
	if err != nil || address.UserID != customerID {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, ErrAddressNotFound
	}
	method, err := s.payments.GetByID(ctx, req.PaymentMethodID)
	if err != nil || method.UserID != customerID {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, ErrPaymentMethodNotFound
	}

	// Custom requests inherit the cart's chef; unpriced ones contribute
	// zero to the provisional total and are priced while pending.
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		line := cartItem.LineDetails
		if line.ChefID == 0 {
			line.ChefID = chefID
		}
		items = append(items, models.OrderItem{LineDetails: line})
	}
	lines := make([]models.LineDetails, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.LineDetails)
	}
	total, err := pricing.OrderTotal(lines, pricing.Provisional)
	if err != nil {
		return nil, err
	}

	methodType, last4 := method.Descriptor()
	order := &models.Order{
		OrderNumber:      uuid.NewString(),
		CustomerID:       customerID,
		ChefID:           chefID,
		CustomerName:     customer.Name,
		CustomerPhone:    customer.Phone,
		CustomerEmail:    customer.Email,
		ChefName:         chef.Name,
		AddressLine:      address.Line,
		City:             address.City,
		PostalCode:       address.PostalCode,
		PaymentType:      methodType,
		PaymentLast4:     last4,
		ScheduledAt:      req.ScheduledAt,
		Status:           models.OrderPending,
		PaymentStatus:    models.PaymentUnpaid,
		TotalAmountCents: total,
		Version:          1,
	}

	if err := s.orders.CreateWithItems(ctx, order, items, cart.ID, cart.Version); err != nil {
		// The transaction rolled back: no order exists and the cart is
		// untouched.
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			// The cart changed between this checkout's read and its write;
			// the caller retries against the fresh cart.
			return nil, ErrConcurrentUpdate
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCartNotFound
		default:
			s.logger.Error("checkout persistence failed",
				zap.Uint("customer_id", customerID),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
		}
	}

	s.afterCommit(ctx, customerID, order)

	return newOrderView(order)
}

// verifyItems re-checks the dish-type precondition against the catalog so
// a cart assembled before a catalog change cannot slip through.
func (s *checkoutService) verifyItems(ctx context.Context, cart *models.Cart) error {
	for _, item := range cart.Items {
		if item.DishID == nil {
			continue
		}
		dish, err := s.dishes.GetByID(ctx, *item.DishID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrDishNotFound
			}
			return err
		}
		if dish.RequiresDishType && item.DishType == "" {
			return ErrDishTypeRequired
		}
	}
	return nil
}

// afterCommit runs the side effects that must only happen once the order
// fully exists: the placed event and cache maintenance. Failures here are
// logged, never surfaced — the order is already committed.
func (s *checkoutService) afterCommit(ctx context.Context, customerID uint, order *models.Order) {
	if s.publisher != nil {
		event := OrderEvent{
			Type:        EventOrderPlaced,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID,
			ChefID:      order.ChefID,
			Recipient:   models.RoleChef,
			OccurredAt:  s.nowFunc(),
		}
		if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
			s.logger.Error("failed to publish order placed event",
				zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.DeleteCart(ctx, customerID); err != nil {
			s.logger.Debug("cart summary cache invalidation failed", zap.Error(err))
		}
		if view, err := newOrderView(order); err == nil {
			if err := s.cache.SetOrder(ctx, order.ID, view, s.cacheTTL); err != nil {
				s.logger.Debug("order summary cache refresh failed", zap.Error(err))
			}
		}
	}
}
