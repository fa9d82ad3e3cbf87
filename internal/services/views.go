package services

import (
	"time"

	"homechef/internal/models"
	"homechef/internal/pricing"
)

// CartView is the derived display state of a cart: item count and subtotal
// are recomputed from line items on every read, never stored.
type CartView struct {
	CartID        uint           `json:"cart_id"`
	ChefID        uint           `json:"chef_id"`
	ItemCount     int            `json:"item_count"`
	SubtotalCents int64          `json:"subtotal_cents"`
	Items         []LineItemView `json:"items"`
}

type LineItemView struct {
	ID             uint   `json:"id"`
	DishID         *uint  `json:"dish_id,omitempty"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	IsCustom       bool   `json:"is_custom"`
	DishType       string `json:"dish_type,omitempty"`
	Options        string `json:"options,omitempty"`
	Note           string `json:"note,omitempty"`
}

type OrderView struct {
	ID                   uint                 `json:"id"`
	OrderNumber          string               `json:"order_number"`
	CustomerID           uint                 `json:"customer_id"`
	ChefID               uint                 `json:"chef_id"`
	ChefName             string               `json:"chef_name"`
	Status               models.OrderStatus   `json:"status"`
	PaymentStatus        models.PaymentStatus `json:"payment_status"`
	TotalAmountCents     int64                `json:"total_amount_cents"`
	OriginalAmountCents  int64                `json:"original_amount_cents"`
	CancellationFeeCents int64                `json:"cancellation_fee_cents"`
	ScheduledAt          time.Time            `json:"scheduled_at"`
	CreatedAt            time.Time            `json:"created_at"`
	Items                []LineItemView       `json:"items"`
}

func newCartView(cart *models.Cart) (*CartView, error) {
	view := &CartView{
		CartID: cart.ID,
		ChefID: cart.ChefID(),
		Items:  make([]LineItemView, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		line, err := newLineItemView(item.ID, item.LineDetails)
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, line)
		view.ItemCount += item.Quantity
		view.SubtotalCents += line.LineTotalCents
	}
	return view, nil
}

func newOrderView(order *models.Order) (*OrderView, error) {
	view := &OrderView{
		ID:                   order.ID,
		OrderNumber:          order.OrderNumber,
		CustomerID:           order.CustomerID,
		ChefID:               order.ChefID,
		ChefName:             order.ChefName,
		Status:               order.Status,
		PaymentStatus:        order.PaymentStatus,
		TotalAmountCents:     order.TotalAmountCents,
		OriginalAmountCents:  order.OriginalAmountCents,
		CancellationFeeCents: order.CancellationFeeCents,
		ScheduledAt:          order.ScheduledAt,
		CreatedAt:            order.CreatedAt,
		Items:                make([]LineItemView, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		line, err := newLineItemView(item.ID, item.LineDetails)
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}

func newLineItemView(id uint, details models.LineDetails) (LineItemView, error) {
	lineTotal, err := pricing.LineTotal(details, pricing.Provisional)
	if err != nil {
		return LineItemView{}, err
	}
	return LineItemView{
		ID:             id,
		DishID:         details.DishID,
		Name:           details.Name,
		Quantity:       details.Quantity,
		UnitPriceCents: details.UnitPriceCents,
		LineTotalCents: lineTotal,
		IsCustom:       details.IsCustom,
		DishType:       details.DishType,
		Options:        details.Options,
		Note:           details.Note,
	}, nil
}
