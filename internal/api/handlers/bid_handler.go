package handlers

import (
	"net/http"

	"famwish/internal/api/middleware"
	"famwish/internal/services"
	"famwish/pkg/logger"

	"github.com/labstack/echo/v4"
)

type BidHandler struct {
	bidLedger *services.BidLedger
	log       logger.Logger
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount"`
}

func NewBidHandler(bidLedger *services.BidLedger, log logger.Logger) *BidHandler {
	return &BidHandler{
		bidLedger: bidLedger,
		log:       log,
	}
}

// PlaceBid handles POST /api/v1/auctions/:id/bids
func (h *BidHandler) PlaceBid(c echo.Context) error {
	auctionID := c.Param("id")

	bidder, ok := middleware.BidderFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	receipt, err := h.bidLedger.PlaceBid(c.Request().Context(), auctionID, bidder, req.Amount)
	if err != nil {
		h.log.Warn("Bid rejected", "auction_id", auctionID, "bidder_id", bidder.ID,
			"amount", req.Amount, "error", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, receipt)
}

// GetBidHistory handles GET /api/v1/auctions/:id/bids
func (h *BidHandler) GetBidHistory(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.bidLedger.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"auction_id":       auction.ID,
		"current_high_bid": auction.CurrentHighBid,
		"bid_count":        auction.BidCount,
		"bid_history":      auction.BidHistory,
	})
}
