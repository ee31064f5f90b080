package services

import (
	"context"
	"fmt"

	"famwish/internal/domain"
	"famwish/pkg/logger"
)

// EventListener consumes the bid event channel in the realtime service:
// accepted bids are archived durably and fanned out to the auction's
// websocket subscribers.
type EventListener struct {
	archive           domain.BidArchive
	broadcaster       domain.AuctionBroadcaster
	connectionManager domain.ConnectionManager
	log               logger.Logger
}

func NewEventListener(archive domain.BidArchive, connectionManager domain.ConnectionManager,
	broadcaster domain.AuctionBroadcaster, log logger.Logger) *EventListener {
	return &EventListener{
		archive:           archive,
		broadcaster:       broadcaster,
		connectionManager: connectionManager,
		log:               log,
	}
}

func (el *EventListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	el.log.Info("Starting event listener")
	return subscriber.SubscribeToBidEvents(ctx, el.handleBidEvent)
}

func (el *EventListener) handleBidEvent(event *domain.BidEvent) error {
	el.log.Info("Handling bid event", "type", event.Type, "auction_id", event.AuctionID)

	switch event.Type {
	case domain.BidAccepted:
		return el.handleBidAccepted(event)
	case domain.BidRejected:
		return nil
	case domain.AuctionEnded:
		return el.handleAuctionEnded(event)
	case domain.AuctionExtended:
		return el.handleAuctionExtended(event)
	}

	return fmt.Errorf("unknown event type %+v", *event)
}

func (el *EventListener) handleBidAccepted(event *domain.BidEvent) error {
	if err := el.archive.ArchiveBid(context.Background(), event); err != nil {
		el.log.Error("Failed to archive bid", "auction_id", event.AuctionID,
			"bidder_id", event.BidderID, "error", err)
		return err
	}

	// Broadcast to all connected users for this auction
	return el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":             "bid_update",
		"current_high_bid": event.Amount,
		"top_bidder_id":    event.BidderID,
		"top_bidder_name":  event.BidderName,
		"timestamp":        event.Timestamp,
	})
}

func (el *EventListener) handleAuctionEnded(event *domain.BidEvent) error {
	// Final broadcast
	if err := el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":      "auction_ended",
		"timestamp": event.Timestamp,
	}); err != nil {
		el.log.Error("Failed to broadcast auction ended event", "error", err)
		return err
	}

	if err := el.connectionManager.CloseAndUnregisterConnections(event.AuctionID); err != nil {
		el.log.Error("Failed to finalize connections for auction", "auction_id",
			event.AuctionID, "error", err)
		return err
	}
	return nil
}

func (el *EventListener) handleAuctionExtended(event *domain.BidEvent) error {
	return el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":      "auction_extended",
		"timestamp": event.Timestamp,
	})
}
