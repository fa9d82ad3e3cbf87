package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homechef/internal/models"
	"homechef/internal/pricing"
)

var (
	asCustomer = Actor{UserID: 1, Role: models.RoleCustomer}
	asChef     = Actor{UserID: 7, Role: models.RoleChef}
	asOperator = Actor{UserID: 100, Role: models.RoleOperator}
)

func newOrderFixture() (OrderService, *fakeOrderRepo, *fakePublisher) {
	orders := newFakeOrderRepo(nil)
	publisher := &fakePublisher{}
	svc := NewOrderService(orders, publisher, nil, time.Minute, zap.NewNop())
	return svc, orders, publisher
}

func seedOrder(orders *fakeOrderRepo, status models.OrderStatus, items ...models.OrderItem) *models.Order {
	if len(items) == 0 {
		items = []models.OrderItem{
			{LineDetails: models.LineDetails{ChefID: 7, Name: "Butter Chicken", UnitPriceCents: 2000, Quantity: 2}},
		}
	}
	var total int64
	for _, item := range items {
		if item.Priced() {
			total += item.UnitPriceCents * int64(item.Quantity)
		}
	}
	paymentStatus := models.PaymentUnpaid
	if status == models.OrderAccepted || status == models.OrderCompleted {
		paymentStatus = models.PaymentPaid
	}
	return orders.addOrder(&models.Order{
		OrderNumber:      "ord-test",
		CustomerID:       1,
		ChefID:           7,
		CustomerName:     "Alice",
		ChefName:         "Chef Kumar",
		Status:           status,
		PaymentStatus:    paymentStatus,
		TotalAmountCents: total,
		ScheduledAt:      time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
		Items:            items,
	})
}

func TestTransitionGraph(t *testing.T) {
	statuses := []models.OrderStatus{
		models.OrderPending, models.OrderAccepted, models.OrderRejected,
		models.OrderCompleted, models.OrderCancelled,
	}
	allowed := map[models.OrderStatus][]models.OrderStatus{
		models.OrderPending:  {models.OrderAccepted, models.OrderRejected, models.OrderCancelled},
		models.OrderAccepted: {models.OrderCompleted, models.OrderCancelled},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				svc, orders, _ := newOrderFixture()
				order := seedOrder(orders, from)

				actor := asOperator
				if to == models.OrderCancelled {
					actor = asCustomer
				}

				_, err := svc.Transition(context.Background(), order.ID, to, actor)

				legal := false
				for _, target := range allowed[from] {
					if target == to {
						legal = true
					}
				}
				if legal {
					require.NoError(t, err)
					updated, getErr := orders.GetByID(context.Background(), order.ID)
					require.NoError(t, getErr)
					assert.Equal(t, to, updated.Status)
				} else {
					assert.ErrorIs(t, err, ErrInvalidTransition)
				}
			})
		}
	}
}

func TestAcceptMarksOrderPaid(t *testing.T) {
	svc, orders, publisher := newOrderFixture()
	order := seedOrder(orders, models.OrderPending)

	view, err := svc.Transition(context.Background(), order.ID, models.OrderAccepted, asChef)
	require.NoError(t, err)

	assert.Equal(t, models.OrderAccepted, view.Status)
	assert.Equal(t, models.PaymentPaid, view.PaymentStatus)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, EventOrderAccepted, publisher.events[0].Type)
	assert.Equal(t, models.RoleCustomer, publisher.events[0].Recipient)
}

func TestRejectNotifiesCustomer(t *testing.T) {
	svc, orders, publisher := newOrderFixture()
	order := seedOrder(orders, models.OrderPending)

	view, err := svc.Transition(context.Background(), order.ID, models.OrderRejected, asOperator)
	require.NoError(t, err)

	assert.Equal(t, models.OrderRejected, view.Status)
	assert.Equal(t, models.PaymentUnpaid, view.PaymentStatus)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, EventOrderRejected, publisher.events[0].Type)
	assert.Equal(t, models.RoleCustomer, publisher.events[0].Recipient)
}

func TestCompleteEmitsNoEvent(t *testing.T) {
	svc, orders, publisher := newOrderFixture()
	order := seedOrder(orders, models.OrderAccepted)

	view, err := svc.Transition(context.Background(), order.ID, models.OrderCompleted, asChef)
	require.NoError(t, err)

	assert.Equal(t, models.OrderCompleted, view.Status)
	assert.Empty(t, publisher.events)
}

func TestAcceptBlockedByUnpricedCustomItem(t *testing.T) {
	svc, orders, _ := newOrderFixture()
	order := seedOrder(orders, models.OrderPending,
		models.OrderItem{LineDetails: models.LineDetails{ChefID: 7, Name: "Butter Chicken", UnitPriceCents: 2000, Quantity: 2}},
		models.OrderItem{LineDetails: models.LineDetails{ChefID: 7, Name: "Grandma's dumplings", Quantity: 1, IsCustom: true}},
	)
	ctx := context.Background()

	_, err := svc.Transition(ctx, order.ID, models.OrderAccepted, asChef)
	assert.ErrorIs(t, err, ErrUnpricedCustomItems)

	// Pricing the custom line unblocks acceptance and lands in the total.
	customItemID := order.Items[1].ID
	view, err := svc.SetCustomPrice(ctx, order.ID, customItemID, 3500, asChef)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), view.TotalAmountCents)

	view, err = svc.Transition(ctx, order.ID, models.OrderAccepted, asChef)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, view.Status)
	assert.Equal(t, models.PaymentPaid, view.PaymentStatus)
}

func TestCancelAcceptedChargesFlatFee(t *testing.T) {
	svc, orders, publisher := newOrderFixture()
	order := seedOrder(orders, models.OrderAccepted,
		models.OrderItem{LineDetails: models.LineDetails{ChefID: 7, Name: "Banquet", UnitPriceCents: 12000, Quantity: 1}},
	)

	view, err := svc.Transition(context.Background(), order.ID, models.OrderCancelled, asCustomer)
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, view.Status)
	assert.Equal(t, pricing.CancellationFeeCents, view.CancellationFeeCents)
	assert.Equal(t, pricing.CancellationFeeCents, view.TotalAmountCents)
	assert.Equal(t, int64(12000), view.OriginalAmountCents)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, EventOrderCancelled, event.Type)
	assert.Equal(t, models.RoleChef, event.Recipient)
	assert.Equal(t, pricing.CancellationFeeCents, event.FeeCents)
}

func TestCancelPendingIsFree(t *testing.T) {
	svc, orders, publisher := newOrderFixture()
	order := seedOrder(orders, models.OrderPending)

	view, err := svc.Transition(context.Background(), order.ID, models.OrderCancelled, asCustomer)
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, view.Status)
	assert.Equal(t, int64(0), view.CancellationFeeCents)
	assert.Equal(t, int64(0), view.TotalAmountCents)
	assert.Equal(t, int64(4000), view.OriginalAmountCents)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, int64(0), publisher.events[0].FeeCents)
}

func TestTransitionRoleGuards(t *testing.T) {
	tests := []struct {
		name   string
		target models.OrderStatus
		actor  Actor
	}{
		{"customer cannot accept", models.OrderAccepted, asCustomer},
		{"customer cannot reject", models.OrderRejected, asCustomer},
		{"foreign chef cannot accept", models.OrderAccepted, Actor{UserID: 9, Role: models.RoleChef}},
		{"chef cannot cancel", models.OrderCancelled, asChef},
		{"foreign customer cannot cancel", models.OrderCancelled, Actor{UserID: 2, Role: models.RoleCustomer}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, orders, _ := newOrderFixture()
			order := seedOrder(orders, models.OrderPending)

			_, err := svc.Transition(context.Background(), order.ID, tt.target, tt.actor)
			assert.ErrorIs(t, err, ErrNotAllowed)
		})
	}
}

func TestConcurrentTransitionSurfacesConflict(t *testing.T) {
	svc, orders, _ := newOrderFixture()
	order := seedOrder(orders, models.OrderPending)
	orders.statusConflict = true

	_, err := svc.Transition(context.Background(), order.ID, models.OrderAccepted, asChef)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestTransitionUnknownOrder(t *testing.T) {
	svc, _, _ := newOrderFixture()

	_, err := svc.Transition(context.Background(), 42, models.OrderAccepted, asOperator)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSetCustomPriceRules(t *testing.T) {
	customItems := func() []models.OrderItem {
		return []models.OrderItem{
			{LineDetails: models.LineDetails{ChefID: 7, Name: "Butter Chicken", UnitPriceCents: 2000, Quantity: 1}},
			{LineDetails: models.LineDetails{ChefID: 7, Name: "Grandma's dumplings", Quantity: 1, IsCustom: true}},
		}
	}

	t.Run("locked once accepted", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := seedOrder(orders, models.OrderAccepted, customItems()...)

		_, err := svc.SetCustomPrice(context.Background(), order.ID, order.Items[1].ID, 3500, asChef)
		assert.ErrorIs(t, err, ErrPriceLocked)
	})

	t.Run("catalog line is not priceable", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := seedOrder(orders, models.OrderPending, customItems()...)

		_, err := svc.SetCustomPrice(context.Background(), order.ID, order.Items[0].ID, 3500, asChef)
		assert.ErrorIs(t, err, ErrNotCustomItem)
	})

	t.Run("price must be positive", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := seedOrder(orders, models.OrderPending, customItems()...)

		_, err := svc.SetCustomPrice(context.Background(), order.ID, order.Items[1].ID, 0, asChef)
		assert.ErrorIs(t, err, pricing.ErrInvalidPrice)
	})

	t.Run("customer may not price", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := seedOrder(orders, models.OrderPending, customItems()...)

		_, err := svc.SetCustomPrice(context.Background(), order.ID, order.Items[1].ID, 3500, asCustomer)
		assert.ErrorIs(t, err, ErrNotAllowed)
	})

	t.Run("foreign chef may not price", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := seedOrder(orders, models.OrderPending, customItems()...)

		_, err := svc.SetCustomPrice(context.Background(), order.ID, order.Items[1].ID, 3500, Actor{UserID: 9, Role: models.RoleChef})
		assert.ErrorIs(t, err, ErrNotAllowed)
	})

	t.Run("unknown item", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := seedOrder(orders, models.OrderPending, customItems()...)

		_, err := svc.SetCustomPrice(context.Background(), order.ID, 999, 3500, asChef)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestTransitionRefreshesCachedSummary(t *testing.T) {
	orders := newFakeOrderRepo(nil)
	cache := newFakeCache()
	svc := NewOrderService(orders, &fakePublisher{}, cache, time.Minute, zap.NewNop())
	order := seedOrder(orders, models.OrderPending)
	ctx := context.Background()

	// Prime the cache with the pre-transition summary.
	_, err := svc.GetSummary(ctx, order.ID, asOperator)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, cache.orderViews[order.ID].Status)

	_, err = svc.Transition(ctx, order.ID, models.OrderAccepted, asChef)
	require.NoError(t, err)

	// The stale entry was invalidated and replaced with the new state.
	assert.GreaterOrEqual(t, cache.orderDeletes, 1)
	assert.Equal(t, models.OrderAccepted, cache.orderViews[order.ID].Status)
}

func TestGetSummaryAccess(t *testing.T) {
	svc, orders, _ := newOrderFixture()
	order := seedOrder(orders, models.OrderPending)
	ctx := context.Background()

	for _, actor := range []Actor{asCustomer, asChef, asOperator} {
		view, err := svc.GetSummary(ctx, order.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, order.ID, view.ID)
	}

	_, err := svc.GetSummary(ctx, order.ID, Actor{UserID: 2, Role: models.RoleCustomer})
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = svc.GetSummary(ctx, order.ID, Actor{UserID: 9, Role: models.RoleChef})
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestListForCustomer(t *testing.T) {
	svc, orders, _ := newOrderFixture()
	seedOrder(orders, models.OrderPending)
	other := seedOrder(orders, models.OrderPending)
	other.CustomerID = 2

	views, err := svc.ListForCustomer(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, uint(1), views[0].CustomerID)
}
