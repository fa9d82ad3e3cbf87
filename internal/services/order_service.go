package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"homechef/internal/models"
	"homechef/internal/pricing"
	"homechef/internal/repository"
)

// Actor identifies who is driving a transition; the state machine's role
// guards are enforced here once, regardless of which surface calls in.
type Actor struct {
	UserID uint
	Role   models.Role
}

// orderTransitions is the complete status graph. Statuses absent as keys
// (rejected, completed, cancelled) are terminal.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:  {models.OrderAccepted, models.OrderRejected, models.OrderCancelled},
	models.OrderAccepted: {models.OrderCompleted, models.OrderCancelled},
}

type OrderService interface {
	Transition(ctx context.Context, orderID uint, target models.OrderStatus, actor Actor) (*OrderView, error)
	// SetCustomPrice assigns a chef price to a custom line item. Only
	// permitted while the order is pending; prices freeze on acceptance.
	SetCustomPrice(ctx context.Context, orderID, itemID uint, priceCents int64, actor Actor) (*OrderView, error)
	GetSummary(ctx context.Context, orderID uint, actor Actor) (*OrderView, error)
	ListForCustomer(ctx context.Context, customerID uint) ([]OrderView, error)
}

type orderService struct {
	orders    repository.OrderRepository
	publisher EventPublisher
	cache     SummaryCache
	cacheTTL  time.Duration
	logger    *zap.Logger
	nowFunc   func() time.Time
}

func NewOrderService(orders repository.OrderRepository, publisher EventPublisher, cache SummaryCache, cacheTTL time.Duration, logger *zap.Logger) OrderService {
	return &orderService{
		orders:    orders,
		publisher: publisher,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

func (s *orderService) Transition(ctx context.Context, orderID uint, target models.OrderStatus, actor Actor) (*OrderView, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(order.Status, target) {
		return nil, ErrInvalidTransition
	}
	if err := checkRole(order, target, actor); err != nil {
		return nil, err
	}
	// Custom pricing gate: an order cannot be accepted or completed while
	// any custom line still lacks a positive price.
	if (target == models.OrderAccepted || target == models.OrderCompleted) && order.HasUnpricedCustomItems() {
		return nil, ErrUnpricedCustomItems
	}

	paymentStatus := order.PaymentStatus
	totals := repository.OrderTotals{
		TotalAmountCents:     order.TotalAmountCents,
		OriginalAmountCents:  order.OriginalAmountCents,
		CancellationFeeCents: order.CancellationFeeCents,
	}

	var feeCents int64
	switch target {
	case models.OrderCancelled:
		// The fee depends on the status the order held when cancellation
		// was requested; the pre-cancellation total is preserved for audit.
		fee, newTotal := pricing.CancellationFee(order.Status)
		totals = repository.OrderTotals{
			TotalAmountCents:     newTotal,
			OriginalAmountCents:  order.TotalAmountCents,
			CancellationFeeCents: fee,
		}
		feeCents = fee
	case models.OrderAccepted:
		// Observed behavior of the platform: acceptance marks the order
		// paid; there is no separate capture step.
		paymentStatus = models.PaymentPaid
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, order.Version, target, paymentStatus, totals); err != nil {
		return nil, mapRepoErr(err, ErrOrderNotFound)
	}

	s.emitTransitionEvent(ctx, order, target, feeCents)

	// Drop the cached summary before re-reading so a failed reload cannot
	// leave the pre-transition view behind.
	s.invalidateSummary(ctx, orderID)

	updated, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.refreshOrderView(ctx, updated)
}

func (s *orderService) SetCustomPrice(ctx context.Context, orderID, itemID uint, priceCents int64, actor Actor) (*OrderView, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.Role.Staff() {
		return nil, ErrNotAllowed
	}
	if actor.Role == models.RoleChef && actor.UserID != order.ChefID {
		return nil, ErrNotAllowed
	}
	if order.Status != models.OrderPending {
		return nil, ErrPriceLocked
	}
	if priceCents <= 0 {
		return nil, pricing.ErrInvalidPrice
	}

	var item *models.OrderItem
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !item.IsCustom {
		return nil, ErrNotCustomItem
	}

	item.UnitPriceCents = priceCents
	newTotal, err := pricing.OrderTotal(order.LineItems(), pricing.Provisional)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateItemPrice(ctx, order.ID, order.Version, itemID, priceCents, newTotal); err != nil {
		return nil, mapRepoErr(err, ErrItemNotFound)
	}

	s.invalidateSummary(ctx, orderID)

	updated, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.refreshOrderView(ctx, updated)
}

func (s *orderService) GetSummary(ctx context.Context, orderID uint, actor Actor) (*OrderView, error) {
	if s.cache != nil {
		var cached OrderView
		if err := s.cache.GetOrder(ctx, orderID, &cached); err == nil {
			if err := summaryAccess(cached.CustomerID, cached.ChefID, actor); err != nil {
				return nil, err
			}
			return &cached, nil
		}
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := summaryAccess(order.CustomerID, order.ChefID, actor); err != nil {
		return nil, err
	}
	return s.refreshOrderView(ctx, order)
}

func (s *orderService) ListForCustomer(ctx context.Context, customerID uint) ([]OrderView, error) {
	orders, err := s.orders.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		view, err := newOrderView(&orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *orderService) getOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapRepoErr(err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *orderService) invalidateSummary(ctx context.Context, orderID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteOrder(ctx, orderID); err != nil {
		s.logger.Debug("order summary cache invalidation failed", zap.Error(err))
	}
}

func (s *orderService) refreshOrderView(ctx context.Context, order *models.Order) (*OrderView, error) {
	view, err := newOrderView(order)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetOrder(ctx, order.ID, view, s.cacheTTL); err != nil {
			s.logger.Debug("order summary cache refresh failed", zap.Error(err))
		}
	}
	return view, nil
}

func (s *orderService) emitTransitionEvent(ctx context.Context, order *models.Order, target models.OrderStatus, feeCents int64) {
	if s.publisher == nil {
		return
	}
	event := OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		ChefID:      order.ChefID,
		OccurredAt:  s.nowFunc(),
	}
	switch target {
	case models.OrderAccepted:
		event.Type = EventOrderAccepted
		event.Recipient = models.RoleCustomer
	case models.OrderRejected:
		event.Type = EventOrderRejected
		event.Recipient = models.RoleCustomer
	case models.OrderCancelled:
		event.Type = EventOrderCancelled
		event.Recipient = models.RoleChef
		event.FeeCents = feeCents
	default:
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish order event",
			zap.String("type", string(event.Type)),
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	}
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// checkRole enforces who may drive which edge: staff accept, reject and
// complete; only the owning customer cancels.
func checkRole(order *models.Order, target models.OrderStatus, actor Actor) error {
	switch target {
	case models.OrderAccepted, models.OrderRejected, models.OrderCompleted:
		if !actor.Role.Staff() {
			return ErrNotAllowed
		}
		if actor.Role == models.RoleChef && actor.UserID != order.ChefID {
			return ErrNotAllowed
		}
	case models.OrderCancelled:
		if actor.Role != models.RoleCustomer || actor.UserID != order.CustomerID {
			return ErrNotAllowed
		}
	}
	return nil
}

// summaryAccess mirrors the mutation ownership rules for reads.
func summaryAccess(customerID, chefID uint, actor Actor) error {
	switch actor.Role {
	case models.RoleOperator:
		return nil
	case models.RoleChef:
		if actor.UserID == chefID {
			return nil
		}
	case models.RoleCustomer:
		if actor.UserID == customerID {
			return nil
		}
	}
	return ErrNotAllowed
}
