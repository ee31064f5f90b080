package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"famwish/internal/domain"

	"github.com/stretchr/testify/require"
)

func seedAuction(t *testing.T, store *AuctionStore, id string, startingBid int64) {
	t.Helper()
	err := store.CreateAuction(context.Background(), &domain.Auction{
		ID:             id,
		Title:          "Dinner with the band",
		CharityID:      "charity1",
		StartingBid:    startingBid,
		CurrentHighBid: startingBid,
		Status:         domain.AuctionOpen,
		EndDate:        time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)
}

func TestAuctionStore_CreateAndGet(t *testing.T) {
	store := NewAuctionStore()
	seedAuction(t, store, "auction1", 1000)

	err := store.CreateAuction(context.Background(), &domain.Auction{ID: "auction1"})
	require.Error(t, err)

	auction, err := store.GetAuction(context.Background(), "auction1")
	require.NoError(t, err)
	require.Equal(t, int64(1000), auction.CurrentHighBid)

	_, err = store.GetAuction(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionStore_ApplyBid(t *testing.T) {
	store := NewAuctionStore()
	seedAuction(t, store, "auction1", 1000)
	ctx := context.Background()

	bid := domain.Bid{BidderID: "user1", BidderName: "Alice", Amount: 1050, Timestamp: time.Now().UTC()}
	count, err := store.ApplyBid(ctx, "auction1", domain.AcceptBid(1000, bid))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	auction, err := store.GetAuction(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, int64(1050), auction.CurrentHighBid)
	require.Equal(t, "user1", auction.TopBidderID)
	require.Equal(t, "Alice", auction.TopBidderName)
	require.Len(t, auction.BidHistory, 1)

	// A stale expected high bid must not mutate anything
	stale := domain.Bid{BidderID: "user2", BidderName: "Bob", Amount: 1100, Timestamp: time.Now().UTC()}
	_, err = store.ApplyBid(ctx, "auction1", domain.AcceptBid(1000, stale))
	require.ErrorIs(t, err, domain.ErrConflict)

	auction, err = store.GetAuction(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, int64(1050), auction.CurrentHighBid)
	require.Equal(t, 1, auction.BidCount)
	require.Len(t, auction.BidHistory, 1)

	_, err = store.ApplyBid(ctx, "missing", domain.AcceptBid(1000, bid))
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionStore_ApplyBid_ConcurrentSamePrecondition(t *testing.T) {
	store := NewAuctionStore()
	seedAuction(t, store, "auction1", 1000)

	// All writers carry the same expected high bid; exactly one may win.
	const writers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, conflicts int

	for i := 0; i < writers; i++ {
		wg.Add(1)
		bid := domain.Bid{
			BidderID:   "user",
			BidderName: "Bidder",
			Amount:     1050,
			Timestamp:  time.Now().UTC(),
		}
		go func() {
			defer wg.Done()
			_, err := store.ApplyBid(context.Background(), "auction1", domain.AcceptBid(1000, bid))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, writers-1, conflicts)

	auction, err := store.GetAuction(context.Background(), "auction1")
	require.NoError(t, err)
	require.Equal(t, 1, auction.BidCount)
	require.Len(t, auction.BidHistory, 1)
}

func TestAuctionStore_GetAuction_ReturnsSnapshot(t *testing.T) {
	store := NewAuctionStore()
	seedAuction(t, store, "auction1", 1000)
	ctx := context.Background()

	bid := domain.Bid{BidderID: "user1", BidderName: "Alice", Amount: 1050, Timestamp: time.Now().UTC()}
	_, err := store.ApplyBid(ctx, "auction1", domain.AcceptBid(1000, bid))
	require.NoError(t, err)

	snapshot, err := store.GetAuction(ctx, "auction1")
	require.NoError(t, err)

	// Mutating the snapshot must not leak into the store
	snapshot.CurrentHighBid = 9999
	snapshot.BidHistory[0].Amount = 9999

	fresh, err := store.GetAuction(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, int64(1050), fresh.CurrentHighBid)
	require.Equal(t, int64(1050), fresh.BidHistory[0].Amount)
}

func TestAuctionStore_SetStatusAndEndDate(t *testing.T) {
	store := NewAuctionStore()
	seedAuction(t, store, "auction1", 1000)
	ctx := context.Background()

	require.NoError(t, store.SetStatus(ctx, "auction1", domain.AuctionClosed))
	newEnd := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Second)
	require.NoError(t, store.SetEndDate(ctx, "auction1", newEnd))

	auction, err := store.GetAuction(ctx, "auction1")
	require.NoError(t, err)
	require.Equal(t, domain.AuctionClosed, auction.Status)
	require.Equal(t, newEnd, auction.EndDate)

	require.ErrorIs(t, store.SetStatus(ctx, "missing", domain.AuctionClosed), domain.ErrAuctionNotFound)
	require.ErrorIs(t, store.SetEndDate(ctx, "missing", newEnd), domain.ErrAuctionNotFound)
}
