package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"famwish/internal/domain"
	"famwish/pkg/logger"
)

// BidLedger owns the validate-and-append path for bids. It keeps no state of
// its own between calls; the auction document in the store is the only
// shared mutable resource, and every write goes through the store's atomic
// conditional update.
type BidLedger struct {
	store        domain.AuctionStore
	minIncrement int64
	maxRetries   int
	enforceClose bool
	log          logger.Logger
}

type BidLedgerOptions struct {
	// MinIncrement is the fixed amount a new bid must exceed the current
	// high bid by.
	MinIncrement int64
	// MaxRetries bounds internal retries after a conditional-update
	// conflict. 0 surfaces the conflict to the caller on the first loss.
	MaxRetries int
	// EnforceClose rejects bids on auctions whose status is not open.
	EnforceClose bool
}

func NewBidLedger(store domain.AuctionStore, opts BidLedgerOptions, log logger.Logger) *BidLedger {
	return &BidLedger{
		store:        store,
		minIncrement: opts.MinIncrement,
		maxRetries:   opts.MaxRetries,
		enforceClose: opts.EnforceClose,
		log:          log,
	}
}

// PlaceBid validates the bid against the current auction state and, if
// valid, records it atomically while updating the derived fields. On a lost
// race it re-reads and re-validates up to MaxRetries times, so a retried bid
// that no longer clears the new minimum fails BidTooLow instead of silently
// overbidding. Exactly one durable mutation happens on success; none on any
// failure path.
func (l *BidLedger) PlaceBid(ctx context.Context, auctionID string, bidder domain.Bidder, amount int64) (*domain.BidReceipt, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("place bid on %s: %w", auctionID, domain.ErrInvalidAmount)
	}
	if !bidder.Can(domain.CapabilityBid) {
		return nil, fmt.Errorf("place bid on %s: %w", auctionID, domain.ErrForbidden)
	}

	for attempt := 0; ; attempt++ {
		auction, err := l.store.GetAuction(ctx, auctionID)
		if err != nil {
			return nil, fmt.Errorf("place bid on %s: %w", auctionID, err)
		}

		if l.enforceClose && auction.Status != domain.AuctionOpen {
			return nil, fmt.Errorf("place bid on %s: %w", auctionID, domain.ErrAuctionClosed)
		}

		minRequired := auction.MinRequiredBid(l.minIncrement)
		if amount < minRequired {
			return nil, fmt.Errorf("place bid on %s: %w", auctionID, &domain.BidTooLowError{MinRequiredBid: minRequired})
		}

		bid := domain.Bid{
			BidderID:   bidder.ID,
			BidderName: bidder.DisplayName,
			Amount:     amount,
			Timestamp:  time.Now().UTC(),
		}

		bidCount, err := l.store.ApplyBid(ctx, auctionID, domain.AcceptBid(auction.CurrentHighBid, bid))
		if err != nil {
			if errors.Is(err, domain.ErrConflict) && attempt < l.maxRetries {
				l.log.Info("Bid lost conditional update, retrying",
					"auction_id", auctionID, "bidder_id", bidder.ID, "attempt", attempt+1)
				continue
			}
			return nil, fmt.Errorf("place bid on %s: %w", auctionID, err)
		}

		l.log.Info("Bid accepted",
			"auction_id", auctionID, "bidder_id", bidder.ID, "amount", amount, "bid_count", bidCount)

		return &domain.BidReceipt{
			Bid:            bid,
			CurrentHighBid: amount,
			BidCount:       bidCount,
		}, nil
	}
}

// GetAuction returns the current auction snapshot.
func (l *BidLedger) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	auction, err := l.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return auction, nil
}
