package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcceptBid_BuildsFullMutation(t *testing.T) {
	bid := Bid{BidderID: "user1", BidderName: "Alice", Amount: 1050, Timestamp: time.Now().UTC()}
	m := AcceptBid(1000, bid)

	require.Equal(t, int64(1000), m.Precondition.ExpectedHighBid)
	require.Len(t, m.Ops, 4)
	require.Equal(t, SetHighBid{Amount: 1050}, m.Ops[0])
	require.Equal(t, SetTopBidder{BidderID: "user1", BidderName: "Alice"}, m.Ops[1])
	require.Equal(t, IncrementBidCount{Delta: 1}, m.Ops[2])
	require.Equal(t, PrependHistory{Bid: bid}, m.Ops[3])
}

func TestBidTooLowError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("place bid on auction1: %w", &BidTooLowError{MinRequiredBid: 1050})

	require.ErrorIs(t, err, ErrBidTooLow)

	var tooLow *BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	require.Equal(t, int64(1050), tooLow.MinRequiredBid)
	require.Contains(t, tooLow.Error(), "1050")

	require.False(t, errors.Is(err, ErrConflict))
}

func TestAuction_MinRequiredBid(t *testing.T) {
	auction := &Auction{StartingBid: 1000, CurrentHighBid: 1000}
	require.Equal(t, int64(1050), auction.MinRequiredBid(50))

	auction.CurrentHighBid = 1100
	require.Equal(t, int64(1150), auction.MinRequiredBid(50))
}

func TestBidder_Can(t *testing.T) {
	b := Bidder{ID: "user1", Capabilities: []string{"viewer", CapabilityBid}}
	require.True(t, b.Can(CapabilityBid))
	require.False(t, b.Can("admin"))
	require.False(t, Bidder{ID: "user2"}.Can(CapabilityBid))
}

func TestAuctionStatus_String(t *testing.T) {
	require.Equal(t, "draft", AuctionDraft.String())
	require.Equal(t, "open", AuctionOpen.String())
	require.Equal(t, "closed", AuctionClosed.String())
	require.Equal(t, "cancelled", AuctionCancelled.String())
	require.Equal(t, "unknown", AuctionStatus(42).String())
}
