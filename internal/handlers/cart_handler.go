package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homechef/internal/middlewares"
	"homechef/internal/services"
)

type CartHandler struct {
	cartService     services.CartService
	checkoutService services.CheckoutService
}

func NewCartHandler(cartService services.CartService, checkoutService services.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req services.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RecordCartOperation("add", false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, conflict, err := h.cartService.AddItem(c.Request.Context(), middlewares.UserID(c), req)
	if err != nil {
		middlewares.RecordCartOperation("add", false)
		respondError(c, err)
		return
	}
	if conflict != nil {
		middlewares.RecordCartOperation("add", false)
		c.JSON(http.StatusConflict, gin.H{
			"error":    "chef_conflict",
			"conflict": conflict,
		})
		return
	}

	middlewares.RecordCartOperation("add", true)
	c.JSON(http.StatusOK, view)
}

// resolveConflictBody optionally carries checkout parameters so an
// add-then-checkout intent interrupted by a conflict can finish in one
// round trip after a replace.
type resolveConflictBody struct {
	services.ResolveConflictRequest
	Checkout *services.CheckoutRequest `json:"checkout"`
}

func (h *CartHandler) ResolveConflict(c *gin.Context) {
	var body resolveConflictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	customerID := middlewares.UserID(c)
	resolution, err := h.cartService.ResolveConflict(c.Request.Context(), customerID, body.ResolveConflictRequest)
	if err != nil {
		middlewares.RecordCartOperation("resolve_conflict", false)
		respondError(c, err)
		return
	}
	middlewares.RecordCartOperation("resolve_conflict", true)

	if resolution.Resolved && resolution.ProceedToCheckout && body.Checkout != nil {
		order, err := h.checkoutService.Checkout(c.Request.Context(), customerID, *body.Checkout)
		if err != nil {
			middlewares.RecordOrderOperation("checkout", false)
			respondError(c, err)
			return
		}
		middlewares.RecordOrderOperation("checkout", true)
		c.JSON(http.StatusCreated, gin.H{
			"resolution": resolution,
			"order":      order,
		})
		return
	}

	c.JSON(http.StatusOK, resolution)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), middlewares.UserID(c), itemID, *req.Quantity)
	if err != nil {
		middlewares.RecordCartOperation("update_quantity", false)
		respondError(c, err)
		return
	}
	middlewares.RecordCartOperation("update_quantity", true)
	c.JSON(http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), middlewares.UserID(c), itemID)
	if err != nil {
		middlewares.RecordCartOperation("remove", false)
		respondError(c, err)
		return
	}
	middlewares.RecordCartOperation("remove", true)
	c.JSON(http.StatusOK, view)
}

func (h *CartHandler) Clear(c *gin.Context) {
	view, err := h.cartService.Clear(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		middlewares.RecordCartOperation("clear", false)
		respondError(c, err)
		return
	}
	middlewares.RecordCartOperation("clear", true)
	c.JSON(http.StatusOK, view)
}

func (h *CartHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RecordOrderOperation("checkout", false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), middlewares.UserID(c), req)
	if err != nil {
		middlewares.RecordOrderOperation("checkout", false)
		respondError(c, err)
		return
	}
	middlewares.RecordOrderOperation("checkout", true)
	c.JSON(http.StatusCreated, order)
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
