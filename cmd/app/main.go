package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/sweeper"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "flightbooking-api"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatal("open storage", "error", err)
	}
	defer storage.Close()

	bookingOpts := []booking.BookingServiceOption{
		booking.WithLogger(log),
		booking.WithSweepBatchSize(cfg.Worker.SweepBatchSize),
	}
	var flightCache flights.FlightCache
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache = cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())
		defer redisCache.Close()
		flightCache = redisCache
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	flightService := flights.NewFlightService(storage.Flights, storage.Catalog, flightCache, log)
	bookingService := booking.NewBookingService(
		storage.Tx,
		storage.Bookings,
		storage.Flights,
		storage.Catalog,
		cfg.Booking.HoldTTL(),
		bookingOpts...,
	)

	if cfg.Worker.Embedded {
		sweeperOpts := []sweeper.Option{sweeper.WithLogger(log)}
		if redisCache != nil {
			sweeperOpts = append(sweeperOpts, sweeper.WithLocker(redisCache, cfg.Worker.LockTTL()))
		}
		go sweeper.New(bookingService, cfg.Worker.SweepInterval(), sweeperOpts...).Run(ctx)
	}

	if err := bootstrap.Run(ctx, cfg, log, flightService, bookingService); err != nil {
		log.Fatal("server error", "error", err)
	}
}
