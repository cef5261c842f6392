package flights

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

// FlightUseCase is the read-only catalog: flights, ticket types and add-ons.
type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ListTicketTypes(ctx context.Context) ([]domain.TicketType, error)
	ListAddons(ctx context.Context, category domain.AddonCategory) ([]domain.AddonOption, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	SetFlight(ctx context.Context, flight *domain.Flight) error
}

type FlightService struct {
	repo    repository.FlightRepository
	catalog repository.CatalogRepository
	cache   FlightCache
	log     *logger.Logger
}

// NewFlightService builds the catalog service. cache may be nil.
func NewFlightService(repo repository.FlightRepository, catalog repository.CatalogRepository, cache FlightCache, log *logger.Logger) *FlightService {
	if log == nil {
		log = logger.Nop()
	}
	return &FlightService{repo: repo, catalog: catalog, cache: cache, log: log}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "flights cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.WarnContext(ctx, "flights cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlight(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, flight); err != nil {
			s.log.WarnContext(ctx, "flight cache write failed", "flight_id", id, "error", err)
		}
	}
	return flight, nil
}

func (s *FlightService) ListTicketTypes(ctx context.Context) ([]domain.TicketType, error) {
	return s.catalog.ListTicketTypes(ctx)
}

// ListAddons returns active add-ons, all of them when category is empty.
func (s *FlightService) ListAddons(ctx context.Context, category domain.AddonCategory) ([]domain.AddonOption, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: unknown add-on category %q", domain.ErrInvalidInput, category)
	}
	return s.catalog.ListAddons(ctx, category)
}

var _ FlightUseCase = (*FlightService)(nil)
