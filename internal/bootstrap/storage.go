package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/repository/memory"
	"github.com/Domenick1991/flightbooking/internal/seed"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage bundles the repositories of one backend.
type Storage struct {
	Tx       repository.Transactor
	Flights  repository.FlightRepository
	Bookings repository.BookingRepository
	Catalog  repository.CatalogRepository
	Writer   repository.CatalogWriter
	close    func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects the backend selected by storage.driver. The memory
// backend lives only as long as the process, so it starts with the sample catalog.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		store := memory.NewStore()
		catalog := store.Catalog()
		if _, err := seed.Catalog(ctx, catalog, time.Now()); err != nil {
			return nil, fmt.Errorf("seed memory storage: %w", err)
		}
		return &Storage{
			Tx:       store,
			Flights:  store.Flights(),
			Bookings: store.Bookings(),
			Catalog:  catalog,
			Writer:   catalog,
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Storage{
		Tx:       repository.NewTransactor(pool),
		Flights:  repository.NewFlightRepository(pool),
		Bookings: repository.NewBookingRepository(pool),
		Catalog:  repository.NewCatalogRepository(pool),
		Writer:   repository.NewCatalogWriter(pool),
		close:    pool.Close,
	}, nil
}
