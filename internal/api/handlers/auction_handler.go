package handlers

import (
	"net/http"
	"time"

	"famwish/internal/services"
	"famwish/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AuctionHandler struct {
	auctionManager *services.AuctionManager
	bidLedger      *services.BidLedger
	log            logger.Logger
}

type CreateAuctionRequest struct {
	Title       string    `json:"title"`
	CelebrityID string    `json:"celebrity_id"`
	CharityID   string    `json:"charity_id"`
	StartingBid int64     `json:"starting_bid"`
	EndDate     time.Time `json:"end_date"`
}

type CreateAuctionResponse struct {
	AuctionID   string    `json:"auction_id"`
	Title       string    `json:"title"`
	StartingBid int64     `json:"starting_bid"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
}

func NewAuctionHandler(auctionManager *services.AuctionManager, bidLedger *services.BidLedger, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctionManager: auctionManager,
		bidLedger:      bidLedger,
		log:            log,
	}
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	// Validation
	if req.Title == "" || req.CelebrityID == "" || req.CharityID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title, celebrity_id and charity_id are required"})
	}

	if req.StartingBid <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Starting bid must be positive"})
	}

	if req.EndDate.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "End date must be in the future"})
	}

	auction, err := h.auctionManager.CreateAuction(c.Request().Context(), services.CreateAuctionParams{
		Title:       req.Title,
		CelebrityID: req.CelebrityID,
		CharityID:   req.CharityID,
		StartingBid: req.StartingBid,
		EndDate:     req.EndDate,
	})
	if err != nil {
		h.log.Error("Failed to create auction", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create auction"})
	}

	response := CreateAuctionResponse{
		AuctionID:   auction.ID,
		Title:       auction.Title,
		StartingBid: auction.StartingBid,
		EndDate:     auction.EndDate,
		Status:      auction.Status.String(),
	}

	h.log.Info("Auction created successfully", "auction_id", auction.ID)
	return c.JSON(http.StatusCreated, response)
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.bidLedger.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, auction)
}
