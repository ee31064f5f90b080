package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"famwish/internal/domain"
)

// AuctionStore is a concurrency-safe in-memory implementation of
// domain.AuctionStore. It holds its mutex across the whole
// compare-and-mutate in ApplyBid, giving the same single-document
// serialization guarantee the Redis store gets from a Lua eval.
type AuctionStore struct {
	mu       sync.RWMutex
	auctions map[string]*domain.Auction
}

func NewAuctionStore() *AuctionStore {
	return &AuctionStore{
		auctions: make(map[string]*domain.Auction),
	}
}

func (s *AuctionStore) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.auctions[auction.ID]; exists {
		return fmt.Errorf("create auction %s: already exists", auction.ID)
	}

	s.auctions[auction.ID] = cloneAuction(auction)
	return nil
}

func (s *AuctionStore) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}
	return cloneAuction(auction), nil
}

func (s *AuctionStore) ApplyBid(ctx context.Context, auctionID string, m domain.BidMutation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return 0, fmt.Errorf("apply bid to auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}

	if auction.CurrentHighBid != m.Precondition.ExpectedHighBid {
		return 0, fmt.Errorf("apply bid to auction %s: %w", auctionID, domain.ErrConflict)
	}

	for _, op := range m.Ops {
		switch op := op.(type) {
		case domain.SetHighBid:
			auction.CurrentHighBid = op.Amount
		case domain.SetTopBidder:
			auction.TopBidderID = op.BidderID
			auction.TopBidderName = op.BidderName
		case domain.IncrementBidCount:
			auction.BidCount += op.Delta
		case domain.PrependHistory:
			auction.BidHistory = append([]domain.Bid{op.Bid}, auction.BidHistory...)
		default:
			return 0, fmt.Errorf("apply bid to auction %s: unsupported mutation op %T", auctionID, op)
		}
	}
	auction.UpdatedAt = time.Now().UTC()

	return auction.BidCount, nil
}

func (s *AuctionStore) SetStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("set status of auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}

	auction.Status = status
	auction.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *AuctionStore) SetEndDate(ctx context.Context, auctionID string, endDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("set end date of auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}

	auction.EndDate = endDate
	auction.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneAuction(a *domain.Auction) *domain.Auction {
	clone := *a
	clone.BidHistory = append([]domain.Bid(nil), a.BidHistory...)
	return &clone
}
