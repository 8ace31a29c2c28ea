package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-ops/cache"
	"hotel-ops/config"
	"hotel-ops/controllers"
	"hotel-ops/jobs"
	"hotel-ops/repositories"
	"hotel-ops/repositories/memory"
	"hotel-ops/routes"
	"hotel-ops/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("❌ Logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.GinMode)
	decimal.MarshalJSONWithoutQuotes = true

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Store init failed", zap.Error(err))
	}

	readCache := openCache(cfg, logger)

	clock := services.SystemClock(cfg.Location)
	synchronizer := services.NewSynchronizer(store, clock, cfg.SyncDebounce, logger)
	deps := services.Deps{
		Store: store,
		Cache: readCache,
		Sync:  synchronizer,
		Clock: clock,
		Log:   logger,
	}
	synchronizer.OnChange(deps.InvalidateReadModels)

	// Initialize services
	roomService := services.NewRoomService(deps, cfg.Sync.RoomsCacheTTL)
	reservationService := services.NewReservationService(deps)
	guestService := services.NewGuestService(deps)
	statsService := services.NewStatisticsService(deps, cfg.Sync.StatsCacheTTL)

	// Initialize controllers
	router := routes.SetupRouter(routes.Controllers{
		Rooms:        controllers.NewRoomController(roomService),
		Reservations: controllers.NewReservationController(reservationService),
		Guests:       controllers.NewGuestController(guestService),
		Statistics:   controllers.NewStatisticsController(statsService, synchronizer),
	}, routes.Options{
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Logger:         logger,
	})

	scheduler := cron.New(cron.WithLocation(cfg.Location))
	if err := jobs.InitCronJobs(scheduler, synchronizer, cfg.Sync.SweepSchedule, logger); err != nil {
		logger.Fatal("❌ Failed to initialize cron jobs", zap.Error(err))
	}
	logger.Info("✅ Status sync scheduled",
		zap.String("profile", cfg.Sync.Name),
		zap.String("schedule", cfg.Sync.SweepSchedule))

	// Catch up on anything that became due while the service was down.
	if _, err := synchronizer.Run(context.Background()); err != nil {
		logger.Warn("initial status sync failed", zap.Error(err))
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("🚀 Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("❌ ListenAndServe()", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("⚠️  Shutdown signal received, shutting down server...")

	cronCtx := scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("❌ Server forced to shutdown", zap.Error(err))
	}
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
		logger.Warn("cron jobs still running at shutdown")
	}

	logger.Info("✅ Server stopped gracefully")
}

// openStore picks the SQL store or, for DB_DRIVER=memory, an in-process one
// seeded with the demo rooms.
func openStore(cfg *config.Config, logger *zap.Logger) (repositories.Store, error) {
	if cfg.DBDriver == "memory" {
		store := memory.NewStore()
		if cfg.SeedData {
			for _, room := range config.DemoRooms() {
				room := room
				if err := store.Rooms().Insert(context.Background(), &room); err != nil {
					return nil, err
				}
			}
		}
		logger.Info("✅ Using in-memory store")
		return store, nil
	}

	if err := config.ConnectDatabase(cfg, logger); err != nil {
		return nil, err
	}
	logger.Info("✅ Database connection established and migrations applied", zap.String("driver", cfg.DBDriver))
	return repositories.NewGormStore(config.DB), nil
}

func openCache(cfg *config.Config, logger *zap.Logger) cache.Cache {
	rdb, err := config.ConnectRedis(context.Background(), cfg)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
		return cache.NewMemory()
	}
	if rdb == nil {
		return cache.NewMemory()
	}
	logger.Info("✅ Redis cache connected", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedis(rdb, "hotel-ops")
}
