package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"famwish/internal/domain"
	wsinfra "famwish/internal/infrastructure/websocket"
	"famwish/internal/services"
	"famwish/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// WebSocketHandler serves the live bid feed: clients subscribe to an
// auction, receive bid_update broadcasts and may place bids over the same
// connection.
type WebSocketHandler struct {
	bidLedger   *services.BidLedger
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewWebSocketHandler(bidLedger *services.BidLedger,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		bidLedger:   bidLedger,
		connManager: connManager,
		log:         log,
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	auctionID := vars["auctionID"]

	auction, err := h.bidLedger.GetAuction(r.Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to find auction", "error", err, "auction_id", auctionID)
		http.Error(w, "auction not found", http.StatusNotFound)
		return
	}

	if auction.Status != domain.AuctionOpen {
		h.log.Info("Rejected connection - auction not open", "auction_id", auctionID,
			"status", auction.Status.String())
		http.Error(w, "auction is not open", http.StatusForbidden)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	userName := r.URL.Query().Get("user_name")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := wsinfra.NewConnection(conn, userID, auctionID)

	// Register connection
	if err := h.connManager.RegisterConnection(userID, auctionID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		conn.Close()
		return
	}

	bidder := domain.Bidder{
		ID:           userID,
		DisplayName:  userName,
		Capabilities: []string{domain.CapabilityBid},
	}

	// Start message handling
	go h.handleMessages(wsConn, bidder, auctionID)
}

func (h *WebSocketHandler) handleMessages(conn *wsinfra.Connection, bidder domain.Bidder, auctionID string) {
	defer func() {
		h.connManager.UnregisterConnection(bidder.ID, auctionID)
		conn.Close()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Debug("Connection read ended", "user_id", bidder.ID, "error", err)
			break
		}

		msgType, ok := msg["type"].(string)
		if !ok {
			continue
		}

		switch msgType {
		case "place_bid":
			h.handleBidMessage(conn, bidder, auctionID, msg)
		case "ping":
			conn.Send(map[string]string{"type": "pong"})
		}
	}
}

func (h *WebSocketHandler) handleBidMessage(conn *wsinfra.Connection, bidder domain.Bidder, auctionID string, msg map[string]interface{}) {
	amount, err := parseAmount(msg["amount"])
	if err != nil {
		conn.Send(map[string]string{"type": "error", "message": "invalid amount"})
		return
	}

	receipt, err := h.bidLedger.PlaceBid(context.Background(), auctionID, bidder, amount)
	if err != nil {
		conn.Send(bidErrorMessage(err))
		return
	}

	conn.Send(map[string]interface{}{
		"type":             "bid_accepted",
		"current_high_bid": receipt.CurrentHighBid,
		"bid_count":        receipt.BidCount,
		"timestamp":        receipt.Bid.Timestamp,
	})
}

func parseAmount(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseInt(v, 10, 64)
	case float64:
		return int64(v), nil
	default:
		return 0, errors.New("unsupported amount type")
	}
}

func bidErrorMessage(err error) map[string]interface{} {
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		return map[string]interface{}{
			"type":             "bid_rejected",
			"reason":           "bid_too_low",
			"min_required_bid": tooLow.MinRequiredBid,
		}
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		return map[string]interface{}{"type": "bid_rejected", "reason": "bid_changed_retry"}
	case errors.Is(err, domain.ErrAuctionClosed):
		return map[string]interface{}{"type": "bid_rejected", "reason": "auction_closed"}
	case errors.Is(err, domain.ErrInvalidAmount):
		return map[string]interface{}{"type": "bid_rejected", "reason": "invalid_amount"}
	default:
		return map[string]interface{}{"type": "error", "message": "failed to place bid"}
	}
}
