// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/cloudeats-backend/internal/config"
	"github.com/your-org/cloudeats-backend/internal/domain/cart"
	"github.com/your-org/cloudeats-backend/internal/domain/order"
	"github.com/your-org/cloudeats-backend/internal/infrastructure/database/mongo"
	"github.com/your-org/cloudeats-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/cloudeats-backend/internal/infrastructure/database/redis"
	"github.com/your-org/cloudeats-backend/internal/interfaces/http"
	"github.com/your-org/cloudeats-backend/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	appLogger := logger.New(cfg)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Connect to MongoDB
	mongoClient, err := mongo.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	// Build the cart-to-order pipeline
	cartStore := cart.NewStore(redisClient.GetClient(), cfg.Cart.TTL)
	ledger := order.NewLedger(mongoClient.GetDatabase())
	mirror := order.NewMirror(db.GetDB())
	orderService := order.NewService(cartStore, ledger, mirror, appLogger)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ledger.CreateIndexes(indexCtx); err != nil {
		log.Printf("Warning: Ledger index creation failed: %v", err)
	}
	cancelIndex()

	if cfg.IsDevelopment() {
		migration.GetTableInfo()
	}

	log.Println("✅ All systems operational!")

	// Start the mirror reconciler
	reconcilerCtx, stopReconciler := context.WithCancel(context.Background())
	defer stopReconciler()

	reconciler := order.NewReconciler(ledger, mirror, cfg.Orders.ReconcileInterval, appLogger)
	go reconciler.Run(reconcilerCtx)

	// Create and start HTTP server
	server := http.NewServer(cfg, cartStore, orderService, mirror, db.GetDB(), redisClient.GetClient(), mongoClient.Mongo)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	stopReconciler()

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}
