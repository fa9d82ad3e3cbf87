package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"homechef/internal/pricing"
	"homechef/internal/services"
)

// respondError maps the engine's error taxonomy onto HTTP statuses. The
// engine never decides user-facing wording beyond the sentinel text.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuantityInvalid),
		errors.Is(err, services.ErrDishTypeRequired),
		errors.Is(err, services.ErrChefRequired),
		errors.Is(err, services.ErrCustomNameRequired),
		errors.Is(err, services.ErrInvalidResolution),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrSchedulingTooSoon),
		errors.Is(err, services.ErrDishUnavailable),
		errors.Is(err, pricing.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrCartNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrDishNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrPaymentMethodNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrUnpricedCustomItems),
		errors.Is(err, services.ErrPriceLocked),
		errors.Is(err, services.ErrNotCustomItem):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrCheckoutFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrCheckoutFailed.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
