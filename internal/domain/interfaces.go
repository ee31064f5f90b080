package domain

import (
	"context"
	"time"
)

// Store interfaces

// AuctionStore is the live document store for auctions. ApplyBid must apply
// the whole mutation atomically iff the precondition holds, returning the
// new bid count; concurrent ApplyBid calls on one auction are serialized by
// the store.
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	ApplyBid(ctx context.Context, auctionID string, m BidMutation) (int, error)
	SetStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	SetEndDate(ctx context.Context, auctionID string, endDate time.Time) error
}

// Repository interfaces (durable MySQL layer)

type AuctionRepository interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	UpdateAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	UpdateAuctionEndDate(ctx context.Context, auctionID string, endDate time.Time) error
	GetAuctionsByStatus(ctx context.Context, status AuctionStatus) ([]*Auction, error)
}

// BidArchive keeps the append-only record of accepted bids and answers the
// aggregation queries behind leaderboard projections.
type BidArchive interface {
	ArchiveBid(ctx context.Context, event *BidEvent) error
	GetBidHistory(ctx context.Context, auctionID string) ([]Bid, error)
	TopBidders(ctx context.Context, limit int) ([]BidderTotal, error)
	CharityRaised(ctx context.Context, charityID string) (int64, error)
}

type SchedulerRepository interface {
	CreateJob(ctx context.Context, job *ScheduledJob) error
	GetPendingJobs(ctx context.Context, before time.Time) ([]*ScheduledJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus) error
	CancelJobsForAuction(ctx context.Context, auctionID string) error
}

// Cache interfaces

type AuctionStateCache interface {
	SetAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	GetAuctionStatus(ctx context.Context, auctionID string) (AuctionStatus, error)
}

// Event interfaces

type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

type EventSubscriber interface {
	SubscribeToBidEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *BidEvent) error

// Notification interfaces

type UserNotifier interface {
	NotifyUser(ctx context.Context, userID string, message interface{}) error
}

type AuctionBroadcaster interface {
	BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error
}

// Leader election interface

type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Scheduler interface

type AuctionScheduler interface {
	ScheduleAuctionClose(ctx context.Context, auctionID string, endDate time.Time) error
	RescheduleAuctionClose(ctx context.Context, auctionID string, newEndDate time.Time) error
	CancelSchedule(ctx context.Context, auctionID string) error
	Start(ctx context.Context) error
	Stop() error
}

// WebSocket interfaces

type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	AuctionID() string
}

type ConnectionManager interface {
	RegisterConnection(userID, auctionID string, conn WebSocketConnection) error
	UnregisterConnection(userID, auctionID string) error
	GetConnectionsForAuction(auctionID string) []WebSocketConnection
	GetConnectionsForUser(userID string) []WebSocketConnection
	BroadcastToAuction(auctionID string, message interface{}) error
	NotifyUser(userID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID string) error
}
