package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/pricing"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

// AnyUser disables the ownership filter on reads. Used by internal callers only.
const AnyUser int64 = 0

const (
	DefaultListLimit      = 100
	MaxListLimit          = 100
	DefaultSweepBatchSize = 500
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID int64, skip, limit int) ([]domain.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	ReclaimExpired(ctx context.Context) (int, error)
}

type Cache interface {
	InvalidateFlight(ctx context.Context, flightID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PassengerInput struct {
	PassengerName string  `json:"passenger_name"`
	TicketTypeID  int64   `json:"ticket_type_id"`
	AddonIDs      []int64 `json:"addon_ids"`
}

type CreateBookingInput struct {
	UserID     int64            `json:"-"`
	FlightID   int64            `json:"flight_id"`
	Passengers []PassengerInput `json:"passengers"`
}

func (in CreateBookingInput) validate() error {
	if len(in.Passengers) == 0 {
		return fmt.Errorf("%w: at least one passenger is required", domain.ErrInvalidInput)
	}
	for i, p := range in.Passengers {
		if strings.TrimSpace(p.PassengerName) == "" {
			return fmt.Errorf("%w: passenger %d has no name", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

type BookingService struct {
	tx                 repository.Transactor
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	catalog            repository.CatalogRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	sweepBatchSize     int
	now                func() time.Time
	log                *logger.Logger
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(log *logger.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func WithSweepBatchSize(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.sweepBatchSize = n
		}
	}
}

func NewBookingService(
	tx repository.Transactor,
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	catalog repository.CatalogRepository,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	if holdTTL <= 0 {
		holdTTL = domain.DefaultHoldTTL
	}
	service := &BookingService{
		tx:             tx,
		bookings:       bookings,
		flights:        flights,
		catalog:        catalog,
		holdTTL:        holdTTL,
		sweepBatchSize: DefaultSweepBatchSize,
		now:            time.Now,
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		flight, err := s.flights.GetForUpdate(ctx, input.FlightID)
		if err != nil {
			return err
		}

		seats := len(input.Passengers)
		if flight.AvailableSeats < seats {
			return &domain.SeatUnavailableError{FlightID: flight.ID, Requested: seats, Remaining: flight.AvailableSeats}
		}

		tickets := make([]domain.Ticket, 0, seats)
		var total int64
		for _, p := range input.Passengers {
			ticketType, err := s.catalog.GetTicketType(ctx, p.TicketTypeID)
			if err != nil {
				return err
			}
			addons, err := s.catalog.GetAddons(ctx, p.AddonIDs)
			if err != nil {
				return err
			}

			quote := pricing.Quote(*flight, *ticketType, addons)
			total += quote.FinalPriceCents
			tickets = append(tickets, domain.Ticket{
				FlightID:        flight.ID,
				TicketTypeID:    ticketType.ID,
				PassengerName:   strings.TrimSpace(p.PassengerName),
				FinalPriceCents: quote.FinalPriceCents,
				ExtraBaggageKg:  quote.ExtraBaggageKg,
				AddonIDs:        quote.AppliedAddonIDs,
			})
		}

		if _, err := s.flights.ReserveSeats(ctx, flight.ID, seats); err != nil {
			return err
		}

		now := s.now()
		booking = &domain.Booking{
			UserID:          input.UserID,
			FlightID:        flight.ID,
			Status:          domain.BookingStatusPending,
			TotalPriceCents: total,
			ExpiresAt:       now.Add(s.holdTTL),
			CreatedAt:       now,
			Tickets:         tickets,
		}
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		"flight_id", booking.FlightID,
		"seats", booking.SeatCount(),
		"total_price_cents", booking.TotalPriceCents,
	)
	s.afterSeatChange(ctx, booking.FlightID)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != AnyUser && booking.UserID != userID {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID int64, skip, limit int) ([]domain.Booking, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.bookings.ListByUser(ctx, userID, skip, limit)
}

func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, bookingID, userID, domain.BookingStatusConfirmed)
		if err != nil {
			return err
		}

		now := s.now()
		if current.IsExpired(now) {
			return domain.ErrBookingExpired
		}
		if err := s.bookings.UpdateStatus(ctx, current.ID, domain.BookingStatusPending, domain.BookingStatusConfirmed, now); err != nil {
			return err
		}
		current.Status = domain.BookingStatusConfirmed
		current.UpdatedAt = now
		booking = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking confirmed", "booking_id", booking.ID)
	s.publish(ctx, kafka.EventBookingConfirmed, booking)
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, bookingID, userID, domain.BookingStatusCancelled)
		if err != nil {
			return err
		}
		if err := s.release(ctx, current); err != nil {
			return err
		}
		booking = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking cancelled", "booking_id", booking.ID, "seats", booking.SeatCount())
	s.afterSeatChange(ctx, booking.FlightID)
	s.publish(ctx, kafka.EventBookingCancelled, booking)
	return booking, nil
}

// ReclaimExpired cancels PENDING bookings whose hold has ended and returns their
// seats. Each booking is reclaimed in its own transaction; one failing booking
// does not stop the batch.
func (s *BookingService) ReclaimExpired(ctx context.Context) (int, error) {
	ids, err := s.bookings.ListExpiredPending(ctx, s.now(), s.sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired bookings: %w", err)
	}

	reclaimed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		booking, err := s.reclaimOne(ctx, id)
		if err != nil {
			level := slog.LevelError
			if IsClientError(err) {
				level = slog.LevelWarn
			}
			s.log.Log(ctx, level, "failed to reclaim booking", "booking_id", id, "error", err)
			continue
		}
		if booking == nil {
			continue
		}
		reclaimed++
		s.afterSeatChange(ctx, booking.FlightID)
		s.publish(ctx, kafka.EventBookingExpired, booking)
	}

	if reclaimed > 0 {
		s.log.InfoContext(ctx, "reclaimed expired bookings", "count", reclaimed)
	}
	return reclaimed, nil
}

// reclaimOne returns nil without error when the booking is no longer an expired hold.
func (s *BookingService) reclaimOne(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	var reclaimed *domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.Status != domain.BookingStatusPending || !current.IsExpired(s.now()) {
			return nil
		}
		if err := s.release(ctx, current); err != nil {
			return err
		}
		reclaimed = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reclaimed, nil
}

// lockOwned locks the booking for a PENDING -> to transition on behalf of userID.
func (s *BookingService) lockOwned(ctx context.Context, bookingID, userID int64, to domain.BookingStatus) (*domain.Booking, error) {
	current, err := s.bookings.GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != AnyUser && current.UserID != userID {
		return nil, domain.ErrBookingNotFound
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, &domain.InvalidTransitionError{BookingID: current.ID, From: current.Status, To: to}
	}
	return current, nil
}

// release moves a locked PENDING booking to CANCELLED and gives its seats back.
func (s *BookingService) release(ctx context.Context, b *domain.Booking) error {
	now := s.now()
	if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingStatusPending, domain.BookingStatusCancelled, now); err != nil {
		return err
	}
	if seats := b.SeatCount(); seats > 0 {
		if _, err := s.flights.ReleaseSeats(ctx, b.FlightID, seats); err != nil {
			return err
		}
	}
	b.Status = domain.BookingStatusCancelled
	b.UpdatedAt = now
	return nil
}

func (s *BookingService) afterSeatChange(ctx context.Context, flightID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlight(ctx, flightID); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate flight cache", "flight_id", flightID, "error", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, s.now())
	for _, topic := range []string{s.bookingTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, event.Key(), event); err != nil {
			s.log.WarnContext(ctx, "failed to publish booking event",
				"type", eventType,
				"booking_id", booking.ID,
				"topic", topic,
				"error", err,
			)
		}
	}
}

// IsClientError reports whether err is caused by the request rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrFlightNotFound) ||
		errors.Is(err, domain.ErrTicketTypeNotFound) ||
		errors.Is(err, domain.ErrBookingNotFound) ||
		errors.Is(err, domain.ErrBookingExpired) ||
		errors.Is(err, domain.ErrSeatUnavailable) ||
		errors.Is(err, domain.ErrInvalidTransition)
}

var _ BookingUseCase = (*BookingService)(nil)
