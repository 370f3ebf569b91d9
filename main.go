package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotel-frontdesk/cache"
	"hotel-frontdesk/clock"
	"hotel-frontdesk/config"
	"hotel-frontdesk/controllers"
	"hotel-frontdesk/queue"
	"hotel-frontdesk/routes"
	"hotel-frontdesk/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}
	cfg := config.Load()

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	log.Printf("✅ Database (%s) connected and migrated", cfg.DBDriver)

	clk := clock.NewSystem(cfg.Location)
	opts := []services.Option{services.WithClock(clk)}

	if rdb := config.NewRedisClient(cfg); rdb != nil {
		defer rdb.Close()
		opts = append(opts, services.WithBoardCache(cache.NewRoomBoard(rdb, cfg.RoomCacheTTL)))
		log.Printf("✅ Room board cache on redis %s", cfg.RedisAddr)
	}

	if cfg.RabbitMQURL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			log.Printf("⚠️  RabbitMQ unavailable, lifecycle events disabled: %v", err)
		} else {
			defer pub.Close()
			opts = append(opts, services.WithPublisher(pub))
			log.Printf("✅ Publishing lifecycle events to queue %s", cfg.EventsQueue)
		}
	}

	roomService := services.NewRoomService(db, opts...)
	stayService := services.NewStayService(db, opts...)
	reservationService := services.NewReservationService(db, opts...)
	availabilityService := services.NewAvailabilityService(db, clk)
	salesReportService := services.NewSalesReportService(db, clk)
	roomTypeService := services.NewRoomTypeService(db)
	settingsService := services.NewSettingsService(db)

	router := routes.SetupRouter(routes.Controllers{
		Rooms:        controllers.NewRoomController(roomService, stayService, availabilityService, clk),
		RoomTypes:    controllers.NewRoomTypeController(roomTypeService),
		Stays:        controllers.NewStayController(stayService, clk),
		Reservations: controllers.NewReservationController(reservationService),
		SalesReport:  controllers.NewSalesReportController(salesReportService),
		Settings:     controllers.NewSettingsController(settingsService),
	}, cfg.CORSOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go services.RunDueOutSweeper(ctx, roomService, cfg.DueOutSweepInterval)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("✅ Server stopped gracefully")
}
