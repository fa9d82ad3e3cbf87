// Package pricing computes line totals, order totals and cancellation fees.
// All amounts are integer cents; the package is pure and performs no I/O.
package pricing

import (
	"errors"

	"homechef/internal/models"
)

// CancellationFeeCents is the flat penalty charged when a customer cancels
// an order the chef has already accepted.
const CancellationFeeCents int64 = 5000

// ErrInvalidPrice signals a negative price, or an unset custom price in a
// context that requires a final one.
var ErrInvalidPrice = errors.New("pricing: invalid price")

// Mode selects how unset custom prices are treated when totaling.
type Mode int

const (
	// Provisional totals let unpriced custom items contribute zero. Used at
	// checkout, before the chef has priced custom requests.
	Provisional Mode = iota
	// Final totals require every line to carry a positive price.
	Final
)

// LineTotal returns quantity times unit price for one line.
func LineTotal(line models.LineDetails, mode Mode) (int64, error) {
	if line.UnitPriceCents < 0 {
		return 0, ErrInvalidPrice
	}
	if line.IsCustom && line.UnitPriceCents == 0 {
		if mode == Final {
			return 0, ErrInvalidPrice
		}
		return 0, nil
	}
	return int64(line.Quantity) * line.UnitPriceCents, nil
}

// OrderTotal sums LineTotal over all lines.
func OrderTotal(lines []models.LineDetails, mode Mode) (int64, error) {
	var total int64
	for _, line := range lines {
		lineTotal, err := LineTotal(line, mode)
		if err != nil {
			return 0, err
		}
		total += lineTotal
	}
	return total, nil
}

// CancellationFee computes the penalty and the order's new total for a
// cancellation requested while the order was in the given status. The
// caller preserves the pre-cancellation total as original_amount.
func CancellationFee(statusAtCancellation models.OrderStatus) (fee, newTotal int64) {
	if statusAtCancellation == models.OrderAccepted {
		return CancellationFeeCents, CancellationFeeCents
	}
	return 0, 0
}
