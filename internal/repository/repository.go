package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// Transactor runs fn as one unit of work. The transaction travels in the ctx
// passed to fn; repository calls made with that ctx join it. Nested calls join
// the outer transaction. Returning an error from fn rolls everything back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// FlightRepository is the catalog view of flights plus the inventory ledger
// that owns available_seats.
type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// GetForUpdate locks the flight row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	// ReserveSeats takes n seats and returns what is left. It never lets the
	// counter go below zero; a shortfall is a *domain.SeatUnavailableError.
	ReserveSeats(ctx context.Context, flightID int64, n int) (int, error)
	// ReleaseSeats gives n seats back and returns the new count. It never lets
	// the counter exceed total_seats.
	ReleaseSeats(ctx context.Context, flightID int64, n int) (int, error)
}

type CatalogRepository interface {
	GetTicketType(ctx context.Context, id int64) (*domain.TicketType, error)
	ListTicketTypes(ctx context.Context) ([]domain.TicketType, error)
	// GetAddons returns the add-ons that exist among ids, active or not.
	GetAddons(ctx context.Context, ids []int64) ([]domain.AddonOption, error)
	// ListAddons returns active add-ons ordered by category, name, price.
	// An empty category returns all of them.
	ListAddons(ctx context.Context, category domain.AddonCategory) ([]domain.AddonOption, error)
}

// CatalogWriter stores reference data. Add-ons are validated before they are written.
type CatalogWriter interface {
	CreateFlight(ctx context.Context, flight *domain.Flight) error
	CreateTicketType(ctx context.Context, ticketType *domain.TicketType) error
	CreateAddon(ctx context.Context, addon *domain.AddonOption) error
}

type BookingRepository interface {
	// Create inserts the booking and its tickets and fills in their IDs.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// GetForUpdate locks the booking row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, skip, limit int) ([]domain.Booking, error)
	// UpdateStatus moves the booking from -> to and fails with
	// domain.ErrInvalidTransition if it is no longer in from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error
	// ListExpiredPending returns IDs of PENDING bookings whose hold ended before now.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]int64, error)
}
