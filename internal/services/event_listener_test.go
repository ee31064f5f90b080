package services

import (
	"context"
	"testing"
	"time"

	"famwish/internal/domain"

	"github.com/stretchr/testify/require"
)

type recordedBroadcast struct {
	auctionID string
	message   interface{}
}

type fakeBroadcaster struct {
	broadcasts []recordedBroadcast
	err        error
}

func (f *fakeBroadcaster) BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.broadcasts = append(f.broadcasts, recordedBroadcast{auctionID: auctionID, message: message})
	return nil
}

type fakeConnectionManager struct {
	closedAuctions []string
}

func (f *fakeConnectionManager) RegisterConnection(userID, auctionID string, conn domain.WebSocketConnection) error {
	return nil
}

func (f *fakeConnectionManager) UnregisterConnection(userID, auctionID string) error { return nil }

func (f *fakeConnectionManager) GetConnectionsForAuction(auctionID string) []domain.WebSocketConnection {
	return nil
}

func (f *fakeConnectionManager) GetConnectionsForUser(userID string) []domain.WebSocketConnection {
	return nil
}

func (f *fakeConnectionManager) BroadcastToAuction(auctionID string, message interface{}) error {
	return nil
}

func (f *fakeConnectionManager) NotifyUser(userID string, message interface{}) error { return nil }

func (f *fakeConnectionManager) CloseAndUnregisterConnections(auctionID string) error {
	f.closedAuctions = append(f.closedAuctions, auctionID)
	return nil
}

type fakeSubscriber struct {
	events []*domain.BidEvent
}

func (f *fakeSubscriber) SubscribeToBidEvents(ctx context.Context, handler domain.EventHandler) error {
	for _, event := range f.events {
		if err := handler(event); err != nil {
			return err
		}
	}
	return nil
}

func TestEventListener_BidAccepted(t *testing.T) {
	archive := newFakeBidArchive()
	broadcaster := &fakeBroadcaster{}
	connManager := &fakeConnectionManager{}
	listener := NewEventListener(archive, connManager, broadcaster, testLogger())

	event := &domain.BidEvent{
		Type:       domain.BidAccepted,
		AuctionID:  "auction1",
		BidderID:   "user1",
		BidderName: "Alice",
		Amount:     1050,
		BidCount:   1,
		Timestamp:  time.Now().UTC(),
	}
	subscriber := &fakeSubscriber{events: []*domain.BidEvent{event}}

	require.NoError(t, listener.Start(context.Background(), subscriber))

	require.Len(t, archive.archived, 1)
	require.Equal(t, event, archive.archived[0])

	require.Len(t, broadcaster.broadcasts, 1)
	require.Equal(t, "auction1", broadcaster.broadcasts[0].auctionID)
	payload, ok := broadcaster.broadcasts[0].message.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "bid_update", payload["type"])
	require.Equal(t, int64(1050), payload["current_high_bid"])
	require.Equal(t, "user1", payload["top_bidder_id"])
}

func TestEventListener_AuctionEnded(t *testing.T) {
	archive := newFakeBidArchive()
	broadcaster := &fakeBroadcaster{}
	connManager := &fakeConnectionManager{}
	listener := NewEventListener(archive, connManager, broadcaster, testLogger())

	event := &domain.BidEvent{Type: domain.AuctionEnded, AuctionID: "auction1", Timestamp: time.Now().UTC()}
	subscriber := &fakeSubscriber{events: []*domain.BidEvent{event}}

	require.NoError(t, listener.Start(context.Background(), subscriber))

	require.Empty(t, archive.archived)
	require.Len(t, broadcaster.broadcasts, 1)
	require.Equal(t, []string{"auction1"}, connManager.closedAuctions)
}

func TestEventListener_RejectedEventIsIgnored(t *testing.T) {
	archive := newFakeBidArchive()
	broadcaster := &fakeBroadcaster{}
	connManager := &fakeConnectionManager{}
	listener := NewEventListener(archive, connManager, broadcaster, testLogger())

	event := &domain.BidEvent{Type: domain.BidRejected, AuctionID: "auction1"}
	subscriber := &fakeSubscriber{events: []*domain.BidEvent{event}}

	require.NoError(t, listener.Start(context.Background(), subscriber))
	require.Empty(t, archive.archived)
	require.Empty(t, broadcaster.broadcasts)
	require.Empty(t, connManager.closedAuctions)
}

func TestEventListener_UnknownEventType(t *testing.T) {
	listener := NewEventListener(newFakeBidArchive(), &fakeConnectionManager{}, &fakeBroadcaster{}, testLogger())
	subscriber := &fakeSubscriber{events: []*domain.BidEvent{{Type: "bogus", AuctionID: "auction1"}}}
	require.Error(t, listener.Start(context.Background(), subscriber))
}
