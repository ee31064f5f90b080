package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"famwish/internal/api/handlers"
	apimiddleware "famwish/internal/api/middleware"
	"famwish/internal/config"
	"famwish/internal/infrastructure/leader"
	"famwish/internal/infrastructure/mysql"
	redisinfra "famwish/internal/infrastructure/redis"
	"famwish/internal/services"
	"famwish/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting Famwish API service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	// Test MySQL connection
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Initialize repositories
	auctionRepo := mysql.NewMySQLAuctionRepository(db)
	bidArchive := mysql.NewMySQLBidArchive(db)
	schedulerRepo := mysql.NewMySQLSchedulerRepository(db)

	// Initialize Redis based components
	auctionStore := redisinfra.NewRedisAuctionStore(rdb)
	stateCache := redisinfra.NewRedisStateCache(rdb)
	eventPublisher := redisinfra.NewEventPublisher(rdb)

	// Initialize leader election
	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)

	// Initialize auction manager
	auctionManager := services.NewAuctionManager(
		auctionRepo,
		auctionStore,
		stateCache,
		eventPublisher,
		nil, // scheduler will be set later
		leaderElection,
		cfg.Instance.ID,
		log,
	)

	// Initialize scheduler
	scheduler := services.NewCronAuctionScheduler(schedulerRepo, auctionManager, log)
	auctionManager.SetScheduler(scheduler) // Set circular dependency

	// Initialize bid ledger
	bidLedger := services.NewBidLedger(auctionStore, services.BidLedgerOptions{
		MinIncrement: cfg.Bidding.MinIncrement,
		MaxRetries:   cfg.Bidding.MaxRetries,
		EnforceClose: cfg.Bidding.EnforceClose,
	}, log)

	// Initialize leaderboard projections
	leaderboard := services.NewLeaderboard(bidArchive)

	// Initialize handlers
	auctionHandler := handlers.NewAuctionHandler(auctionManager, bidLedger, log)
	bidHandler := handlers.NewBidHandler(bidLedger, log)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboard, log)

	// Setup routes
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api := e.Group("/api/v1")
	api.POST("/auctions", auctionHandler.CreateAuction)
	api.GET("/auctions/:id", auctionHandler.GetAuction)
	api.GET("/auctions/:id/bids", bidHandler.GetBidHistory)
	api.POST("/auctions/:id/bids", bidHandler.PlaceBid, apimiddleware.RequireIdentity)
	api.GET("/leaderboard/bidders", leaderboardHandler.TopBidders)
	api.GET("/charities/:id/raised", leaderboardHandler.CharityRaised)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Start background services
	go func() {
		if err := scheduler.Start(context.Background()); err != nil {
			log.Error("Failed to start scheduler", "error", err)
		}
	}()

	// Try to become leader
	go func() {
		for {
			became, err := leaderElection.BecomeLeader(context.Background(), cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}

			if became {
				log.Info("Became close-scheduler leader", "instance_id", cfg.Instance.ID)
			}

			time.Sleep(10 * time.Second)
		}
	}()

	// Start HTTP server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.APIPort)
		log.Info("Starting API server", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down API service...")

	// Graceful shutdown
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop scheduler
	scheduler.Stop()

	// Release leadership
	leaderElection.ReleaseLeadership(ctx, cfg.Instance.ID)

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("API service stopped")
}
