package domain

import (
	"time"
)

// Auction is the single document owning an item's bidding state. All bid
// mutations go through AuctionStore.ApplyBid; nothing else may touch
// CurrentHighBid, BidCount, TopBidderID or BidHistory.
type Auction struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	CelebrityID    string        `json:"celebrity_id"`
	CharityID      string        `json:"charity_id"`
	StartingBid    int64         `json:"starting_bid"`
	CurrentHighBid int64         `json:"current_high_bid"`
	BidCount       int           `json:"bid_count"`
	TopBidderID    string        `json:"top_bidder_id"`
	TopBidderName  string        `json:"top_bidder_name"`
	BidHistory     []Bid         `json:"bid_history"` // newest-first, append-only
	Status         AuctionStatus `json:"status"`
	EndDate        time.Time     `json:"end_date"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// MinRequiredBid returns the lowest amount the next bid must reach.
// CurrentHighBid equals StartingBid until the first accepted bid.
func (a *Auction) MinRequiredBid(increment int64) int64 {
	return a.CurrentHighBid + increment
}

type AuctionStatus int

const (
	AuctionDraft AuctionStatus = iota
	AuctionOpen
	AuctionClosed
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionDraft:
		return "draft"
	case AuctionOpen:
		return "open"
	case AuctionClosed:
		return "closed"
	case AuctionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Bid is one accepted offer. BidderName is a snapshot of the bidder's
// display name at bid time and is not updated retroactively.
type Bid struct {
	BidderID   string    `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	Amount     int64     `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// Bidder is the authenticated identity supplied by the surrounding
// framework. Only identities holding CapabilityBid may place bids.
type Bidder struct {
	ID           string
	DisplayName  string
	Capabilities []string
}

const CapabilityBid = "bidder"

func (b Bidder) Can(capability string) bool {
	for _, c := range b.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// BidReceipt is returned to the caller on an accepted bid so UI state can be
// updated without a second read.
type BidReceipt struct {
	Bid            Bid   `json:"bid"`
	CurrentHighBid int64 `json:"current_high_bid"`
	BidCount       int   `json:"bid_count"`
}

type BidEvent struct {
	Type       BidEventType `json:"type"`
	AuctionID  string       `json:"auction_id"`
	BidderID   string       `json:"bidder_id"`
	BidderName string       `json:"bidder_name"`
	Amount     int64        `json:"amount"`
	BidCount   int          `json:"bid_count"`
	Timestamp  time.Time    `json:"timestamp"`
}

type BidEventType string

const (
	BidAccepted     BidEventType = "bid_accepted"
	BidRejected     BidEventType = "bid_rejected"
	AuctionEnded    BidEventType = "auction_ended"
	AuctionExtended BidEventType = "auction_extended"
)

type ScheduledJob struct {
	ID        string
	AuctionID string
	JobType   JobType
	RunAt     time.Time
	Status    JobStatus
	CreatedAt time.Time
}

type JobType string

const (
	JobCloseAuction JobType = "close_auction"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobExecuted  JobStatus = "executed"
	JobCancelled JobStatus = "cancelled"
)

// BidderTotal is a leaderboard projection row: total amount a bidder has
// committed across accepted bids.
type BidderTotal struct {
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	Total      int64  `json:"total"`
	Bids       int    `json:"bids"`
}
