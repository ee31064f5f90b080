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
	"famwish/internal/infrastructure/mysql"
	redisinfra "famwish/internal/infrastructure/redis"
	wsinfra "famwish/internal/infrastructure/websocket"
	"famwish/internal/services"
	"famwish/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
)

func main() {
	log := logger.New()
	log.Info("Starting Famwish realtime service")

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

	// Initialize repositories
	bidArchive := mysql.NewMySQLBidArchive(db)

	// Initialize Redis services
	auctionStore := redisinfra.NewRedisAuctionStore(rdb)
	eventSubscriber := redisinfra.NewRedisEventSubscriber(rdb, log)

	// Initialize bid ledger
	bidLedger := services.NewBidLedger(auctionStore, services.BidLedgerOptions{
		MinIncrement: cfg.Bidding.MinIncrement,
		MaxRetries:   cfg.Bidding.MaxRetries,
		EnforceClose: cfg.Bidding.EnforceClose,
	}, log)

	// Initialize connection manager and broadcaster
	connManager := wsinfra.NewConnectionManager(log)
	broadcaster := wsinfra.NewWebSocketNotifier(connManager)

	// Initialize event listener
	eventListener := services.NewEventListener(bidArchive, connManager, broadcaster, log)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(bidLedger, connManager, log)

	// Setup routes
	router := mux.NewRouter()
	router.Use(apimiddleware.CORS)

	// WebSocket routes
	router.HandleFunc("/ws/auction/{auctionID}", wsHandler.HandleConnection)

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start event listener
	listenerCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	go func() {
		if err := eventListener.Start(listenerCtx, eventSubscriber); err != nil && err != context.Canceled {
			log.Error("Event listener stopped", "error", err)
		}
	}()

	// Start HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.RealtimePort),
		Handler: router,
	}

	go func() {
		log.Info("Starting realtime server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down realtime service...")

	stopListener()

	// Graceful shutdown
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Realtime service stopped")
}
