package services

import (
	"context"
	"fmt"

	"famwish/internal/domain"
)

// Leaderboard serves read-only projections over the bid archive. It adds no
// invariants of its own; everything here is derived from accepted bids.
type Leaderboard struct {
	archive domain.BidArchive
}

func NewLeaderboard(archive domain.BidArchive) *Leaderboard {
	return &Leaderboard{archive: archive}
}

const defaultLeaderboardSize = 10

// TopBidders returns the bidders who have committed the most across all
// auctions, highest total first.
func (l *Leaderboard) TopBidders(ctx context.Context, limit int) ([]domain.BidderTotal, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}

	totals, err := l.archive.TopBidders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top bidders: %w", err)
	}
	return totals, nil
}

// CharityRaised returns the total raised for a charity: the winning bid of
// every auction benefiting it.
func (l *Leaderboard) CharityRaised(ctx context.Context, charityID string) (int64, error) {
	raised, err := l.archive.CharityRaised(ctx, charityID)
	if err != nil {
		return 0, fmt.Errorf("charity raised for %s: %w", charityID, err)
	}
	return raised, nil
}

// AuctionHistory returns the archived accepted bids for an auction,
// newest-first.
func (l *Leaderboard) AuctionHistory(ctx context.Context, auctionID string) ([]domain.Bid, error) {
	bids, err := l.archive.GetBidHistory(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction history for %s: %w", auctionID, err)
	}
	return bids, nil
}
