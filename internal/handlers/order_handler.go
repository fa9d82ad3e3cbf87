package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homechef/internal/middlewares"
	"homechef/internal/models"
	"homechef/internal/services"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	view, err := h.orderService.GetSummary(c.Request.Context(), orderID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	if middlewares.UserRole(c) != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{"error": "customers only"})
		return
	}

	views, err := h.orderService.ListForCustomer(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=accepted rejected completed cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RecordOrderOperation("transition", false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.orderService.Transition(c.Request.Context(), orderID, models.OrderStatus(req.Status), actor(c))
	if err != nil {
		middlewares.RecordOrderOperation("transition", false)
		respondError(c, err)
		return
	}
	middlewares.RecordOrderOperation("transition", true)
	c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) SetCustomPrice(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(c, "item_id")
	if !ok {
		return
	}

	var req struct {
		PriceCents int64 `json:"price_cents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RecordOrderOperation("set_custom_price", false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.orderService.SetCustomPrice(c.Request.Context(), orderID, itemID, req.PriceCents, actor(c))
	if err != nil {
		middlewares.RecordOrderOperation("set_custom_price", false)
		respondError(c, err)
		return
	}
	middlewares.RecordOrderOperation("set_custom_price", true)
	c.JSON(http.StatusOK, view)
}

func actor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: middlewares.UserID(c),
		Role:   middlewares.UserRole(c),
	}
}
