package main

import (
	"context"
	"os"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/seed"
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
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "flightbooking-seed"})
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Fatal("memory storage is seeded by the api process on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	storage, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatal("open storage", "error", err)
	}
	defer storage.Close()

	res, err := seed.Catalog(ctx, storage.Writer, time.Now())
	if err != nil {
		log.Fatal("seed catalog", "error", err)
	}
	log.Info("catalog seeded", "flights", res.Flights, "ticket_types", res.TicketTypes, "addons", res.Addons)
}
