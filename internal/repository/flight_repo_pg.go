package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, flight_number, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, base_price_cents, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(conn(ctx, r.db).QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
}

func (r *PGFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(conn(ctx, r.db).QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id))
}

func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: seat count must be positive", domain.ErrInvalidInput)
	}

	q := conn(ctx, r.db)
	var remaining int
	err := q.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND available_seats >= $2
		RETURNING available_seats`, flightID, n).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("reserve seats: %w", err)
	}

	if err := q.QueryRow(ctx, `SELECT available_seats FROM flights WHERE id=$1`, flightID).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrFlightNotFound
		}
		return 0, fmt.Errorf("read available seats: %w", err)
	}
	return remaining, &domain.SeatUnavailableError{FlightID: flightID, Requested: n, Remaining: remaining}
}

func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: seat count must be positive", domain.ErrInvalidInput)
	}

	q := conn(ctx, r.db)
	var remaining int
	err := q.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now()
		WHERE id=$1 AND available_seats + $2 <= total_seats
		RETURNING available_seats`, flightID, n).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("release seats: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, flightID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check flight: %w", err)
	}
	if !exists {
		return 0, domain.ErrFlightNotFound
	}
	return 0, fmt.Errorf("release %d seats on flight %d: %w", n, flightID, domain.ErrCapacityExceeded)
}

// CreateFlight stores f as given. AvailableSeats is not derived from TotalSeats,
// so a sold-out flight is created with AvailableSeats 0.
func (r *PGFlightRepository) CreateFlight(ctx context.Context, f *domain.Flight) error {
	if f.TotalSeats < 0 || f.AvailableSeats < 0 || f.AvailableSeats > f.TotalSeats {
		return fmt.Errorf("%w: seats must satisfy 0 <= available <= total", domain.ErrInvalidInput)
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO flights (flight_number, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, base_price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		f.FlightNumber, f.FromAirport, f.ToAirport, f.DepartureTime, f.ArrivalTime, f.TotalSeats, f.AvailableSeats, f.BasePriceCents).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert flight %s: %w", f.FlightNumber, err)
	}
	return nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.BasePriceCents, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("scan flight: %w", err)
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
