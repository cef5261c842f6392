package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, user_id, flight_id, status, total_price_cents, expires_at, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		if err := q.QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, status, total_price_cents, expires_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING id, updated_at`,
			b.UserID, b.FlightID, string(b.Status), b.TotalPriceCents, b.ExpiresAt, b.CreatedAt).
			Scan(&b.ID, &b.UpdatedAt); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		for i := range b.Tickets {
			t := &b.Tickets[i]
			t.BookingID = b.ID
			if err := q.QueryRow(ctx, `INSERT INTO tickets (booking_id, flight_id, ticket_type_id, passenger_name, final_price_cents, extra_baggage_kg, addon_ids)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				t.BookingID, t.FlightID, t.TicketTypeID, t.PassengerName, t.FinalPriceCents, t.ExtraBaggageKg, addonIDs(t.AddonIDs)).
				Scan(&t.ID); err != nil {
				return fmt.Errorf("insert ticket for %q: %w", t.PassengerName, err)
			}
		}
		return nil
	})
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id)
}

func (r *PGBookingRepository) get(ctx context.Context, query string, id int64) (*domain.Booking, error) {
	q := conn(ctx, r.db)
	b, err := scanBooking(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	tickets, err := r.ticketsFor(ctx, q, []int64{b.ID})
	if err != nil {
		return nil, err
	}
	b.Tickets = tickets[b.ID]
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64, skip, limit int) ([]domain.Booking, error) {
	q := conn(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}

	bookings := make([]domain.Booking, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		bookings = append(bookings, *b)
		ids = append(ids, b.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	tickets, err := r.ticketsFor(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Tickets = tickets[bookings[i].ID]
	}
	return bookings, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error {
	cmd, err := conn(ctx, r.db).Exec(ctx, `UPDATE bookings SET status=$3, updated_at=$4 WHERE id=$1 AND status=$2`, id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("booking %d is no longer %s: %w", id, from, domain.ErrInvalidTransition)
	}
	return nil
}

func (r *PGBookingRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id FROM bookings
		WHERE status=$1 AND expires_at < $2
		ORDER BY expires_at, id
		LIMIT $3`, string(domain.BookingStatusPending), now, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired bookings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booking id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PGBookingRepository) ticketsFor(ctx context.Context, q querier, bookingIDs []int64) (map[int64][]domain.Ticket, error) {
	out := make(map[int64][]domain.Ticket, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, `SELECT id, booking_id, flight_id, ticket_type_id, passenger_name, final_price_cents, extra_baggage_kg, addon_ids
		FROM tickets WHERE booking_id = ANY($1) ORDER BY booking_id, id`, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.BookingID, &t.FlightID, &t.TicketTypeID, &t.PassengerName, &t.FinalPriceCents, &t.ExtraBaggageKg, &t.AddonIDs); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out[t.BookingID] = append(out[t.BookingID], t)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &status, &b.TotalPriceCents, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

// addonIDs keeps a NOT NULL array column when a passenger picked nothing.
func addonIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

var _ BookingRepository = (*PGBookingRepository)(nil)
