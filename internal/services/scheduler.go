package services

import (
	"context"
	"time"

	"famwish/internal/domain"
	"famwish/pkg/logger"
	"famwish/pkg/utils"

	"github.com/robfig/cron/v3"
)

type CronAuctionScheduler struct {
	cron       *cron.Cron
	repo       domain.SchedulerRepository
	auctionMgr *AuctionManager
	log        logger.Logger
}

func NewCronAuctionScheduler(repo domain.SchedulerRepository, auctionMgr *AuctionManager,
	log logger.Logger) *CronAuctionScheduler {
	return &CronAuctionScheduler{
		cron:       cron.New(cron.WithSeconds()),
		repo:       repo,
		auctionMgr: auctionMgr,
		log:        log,
	}
}

func (s *CronAuctionScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting auction scheduler")

	// Check for due close jobs every 15 seconds
	_, err := s.cron.AddFunc("@every 15s", func() {
		s.processPendingJobs(ctx)
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronAuctionScheduler) Stop() error {
	s.log.Info("Stopping auction scheduler")
	s.cron.Stop()
	return nil
}

func (s *CronAuctionScheduler) ScheduleAuctionClose(ctx context.Context, auctionID string, endDate time.Time) error {
	job := &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobCloseAuction,
		RunAt:     endDate,
		Status:    domain.JobPending,
		CreatedAt: time.Now().UTC(),
	}

	return s.repo.CreateJob(ctx, job)
}

func (s *CronAuctionScheduler) RescheduleAuctionClose(ctx context.Context, auctionID string, newEndDate time.Time) error {
	// Cancel existing close jobs
	if err := s.repo.CancelJobsForAuction(ctx, auctionID); err != nil {
		return err
	}

	// Create new close job
	return s.ScheduleAuctionClose(ctx, auctionID, newEndDate)
}

func (s *CronAuctionScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	return s.repo.CancelJobsForAuction(ctx, auctionID)
}

func (s *CronAuctionScheduler) processPendingJobs(ctx context.Context) {
	jobs, err := s.repo.GetPendingJobs(ctx, time.Now())
	if err != nil {
		s.log.Error("Failed to get pending jobs", "error", err)
		return
	}

	for _, job := range jobs {
		s.log.Info("Processing job", "job_id", job.ID, "type", job.JobType, "auction_id", job.AuctionID)

		switch job.JobType {
		case domain.JobCloseAuction:
			err = s.auctionMgr.CloseAuction(ctx, job.AuctionID)
		}

		if err != nil {
			s.log.Error("Failed to execute job", "job_id", job.ID, "error", err)
			// Don't mark as executed on error, will retry
			continue
		}

		s.repo.UpdateJobStatus(ctx, job.ID, domain.JobExecuted)
	}
}
