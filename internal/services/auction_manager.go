package services

import (
	"context"
	"sync"
	"time"

	"famwish/internal/domain"
	"famwish/pkg/logger"
	"famwish/pkg/utils"
)

// AuctionManager drives the auction lifecycle: creation, the close
// transition at end date, and the anti-sniping extension. Close and extend
// are leader-gated so a single instance acts on each auction.
type AuctionManager struct {
	auctionRepo    domain.AuctionRepository
	store          domain.AuctionStore
	stateCache     domain.AuctionStateCache
	eventPub       domain.EventPublisher
	scheduler      domain.AuctionScheduler
	leaderElection domain.LeaderElection
	instanceID     string
	log            logger.Logger
	auctionTimers  map[string]*time.Timer
	timerMutex     sync.RWMutex
}

func NewAuctionManager(
	auctionRepo domain.AuctionRepository,
	store domain.AuctionStore,
	stateCache domain.AuctionStateCache,
	eventPub domain.EventPublisher,
	scheduler domain.AuctionScheduler,
	leaderElection domain.LeaderElection,
	instanceID string,
	log logger.Logger,
) *AuctionManager {
	return &AuctionManager{
		auctionRepo:    auctionRepo,
		store:          store,
		stateCache:     stateCache,
		eventPub:       eventPub,
		scheduler:      scheduler,
		leaderElection: leaderElection,
		instanceID:     instanceID,
		log:            log,
		auctionTimers:  make(map[string]*time.Timer),
	}
}

type CreateAuctionParams struct {
	Title       string
	CelebrityID string
	CharityID   string
	StartingBid int64
	EndDate     time.Time
}

// CreateAuction opens an auction immediately: catalog row, live document
// with currentHighBid = startingBid and empty history, and a scheduled
// close job at the end date.
func (am *AuctionManager) CreateAuction(ctx context.Context, params CreateAuctionParams) (*domain.Auction, error) {
	now := time.Now().UTC()
	auction := &domain.Auction{
		ID:             utils.GenerateID("auction"),
		Title:          params.Title,
		CelebrityID:    params.CelebrityID,
		CharityID:      params.CharityID,
		StartingBid:    params.StartingBid,
		CurrentHighBid: params.StartingBid,
		Status:         domain.AuctionOpen,
		EndDate:        params.EndDate.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Save to database
	if err := am.auctionRepo.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	// Initialize the live document
	if err := am.store.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	if err := am.stateCache.SetAuctionStatus(ctx, auction.ID, domain.AuctionOpen); err != nil {
		return nil, err
	}

	// Schedule close
	if err := am.scheduler.ScheduleAuctionClose(ctx, auction.ID, auction.EndDate); err != nil {
		return nil, err
	}

	am.log.Info("Auction created", "auction_id", auction.ID, "charity_id", auction.CharityID,
		"starting_bid", auction.StartingBid, "end_date", auction.EndDate)
	return auction, nil
}

func (am *AuctionManager) CloseAuction(ctx context.Context, auctionID string) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil || !isLeader {
		return err
	}

	am.log.Info("Closing auction", "auction_id", auctionID)

	// Check current status to prevent double-closing
	currentStatus, err := am.stateCache.GetAuctionStatus(ctx, auctionID)
	if err != nil || currentStatus != domain.AuctionOpen {
		return nil
	}

	// Update status everywhere the ledger reads it
	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.AuctionClosed); err != nil {
		return err
	}

	if err := am.store.SetStatus(ctx, auctionID, domain.AuctionClosed); err != nil {
		return err
	}

	if err := am.stateCache.SetAuctionStatus(ctx, auctionID, domain.AuctionClosed); err != nil {
		return err
	}

	// Cancel any pending timers
	am.cancelTimer(auctionID)

	// Publish close event
	return am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.AuctionEnded,
		AuctionID: auctionID,
		Timestamp: time.Now().UTC(),
	})
}

func (am *AuctionManager) CancelAuction(ctx context.Context, auctionID string) error {
	am.log.Info("Cancelling auction", "auction_id", auctionID)

	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.AuctionCancelled); err != nil {
		return err
	}

	if err := am.store.SetStatus(ctx, auctionID, domain.AuctionCancelled); err != nil {
		return err
	}

	if err := am.stateCache.SetAuctionStatus(ctx, auctionID, domain.AuctionCancelled); err != nil {
		return err
	}

	am.cancelTimer(auctionID)

	return am.scheduler.CancelSchedule(ctx, auctionID)
}

// CheckAndExtendAuction pushes the end date out when a bid lands inside the
// closing window, so a last-second bid cannot end the auction before others
// can respond.
func (am *AuctionManager) CheckAndExtendAuction(ctx context.Context, auctionID string, extensionDuration time.Duration) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil || !isLeader {
		return err
	}

	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	timeUntilEnd := time.Until(auction.EndDate)
	if timeUntilEnd <= extensionDuration && timeUntilEnd > 0 {
		newEndDate := time.Now().UTC().Add(extensionDuration)

		if err := am.auctionRepo.UpdateAuctionEndDate(ctx, auctionID, newEndDate); err != nil {
			return err
		}

		if err := am.store.SetEndDate(ctx, auctionID, newEndDate); err != nil {
			return err
		}

		// Reschedule
		if err := am.scheduler.RescheduleAuctionClose(ctx, auctionID, newEndDate); err != nil {
			return err
		}

		// Set new timer
		am.setCloseTimer(auctionID, extensionDuration)

		// Publish extension event
		am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
			Type:      domain.AuctionExtended,
			AuctionID: auctionID,
			Timestamp: time.Now().UTC(),
		})

		am.log.Info("Auction extended", "auction_id", auctionID, "new_end_date", newEndDate)
	}

	return nil
}

func (am *AuctionManager) setCloseTimer(auctionID string, duration time.Duration) {
	am.timerMutex.Lock()
	defer am.timerMutex.Unlock()

	// Cancel existing timer
	if timer, exists := am.auctionTimers[auctionID]; exists {
		timer.Stop()
	}

	// Set new timer
	am.auctionTimers[auctionID] = time.AfterFunc(duration, func() {
		am.CloseAuction(context.Background(), auctionID)
	})
}

func (am *AuctionManager) cancelTimer(auctionID string) {
	am.timerMutex.Lock()
	defer am.timerMutex.Unlock()

	if timer, exists := am.auctionTimers[auctionID]; exists {
		timer.Stop()
		delete(am.auctionTimers, auctionID)
	}
}

func (am *AuctionManager) SetScheduler(scheduler domain.AuctionScheduler) {
	am.scheduler = scheduler
}
