package handlers

import (
	"errors"
	"net/http"

	"famwish/internal/domain"

	"github.com/labstack/echo/v4"
)

// writeError maps domain sentinel errors to HTTP responses. Uses errors.Is
// so wrapped sentinels match; unknown errors become 500s without leaking
// internals. BidTooLow responses carry the exact minimum so the caller can
// correct and resubmit in one step.
func writeError(c echo.Context, err error) error {
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":            "bid amount too low",
			"min_required_bid": tooLow.MinRequiredBid,
		})
	}

	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "auction not found"})
	case errors.Is(err, domain.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bid amount must be positive"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "bidding not permitted for this account"})
	case errors.Is(err, domain.ErrAuctionClosed):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "auction is no longer accepting bids"})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "bid amount changed, please retry"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "service temporarily unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
