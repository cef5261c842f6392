package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
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
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "flightbooking-worker"})
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatal("invalid worker config", "error", err)
	}

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
	sweeperOpts := []sweeper.Option{sweeper.WithLogger(log)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())
		defer redisCache.Close()
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
		sweeperOpts = append(sweeperOpts, sweeper.WithLocker(redisCache, cfg.Worker.LockTTL()))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	bookingService := booking.NewBookingService(
		storage.Tx,
		storage.Bookings,
		storage.Flights,
		storage.Catalog,
		cfg.Booking.HoldTTL(),
		bookingOpts...,
	)

	var wg sync.WaitGroup

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
		defer consumer.Close()
		sender := email.NewSender(log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.ConsumeBookingEvents(ctx, sender.Send); err != nil {
				log.Error("notification consumer stopped", "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.New(bookingService, cfg.Worker.SweepInterval(), sweeperOpts...).Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutting down worker")
	wg.Wait()
}
