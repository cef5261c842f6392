package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlight(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	flight   domain.Flight
	economy  domain.TicketType
	business domain.TicketType
	bag20    domain.AddonOption
	meal     domain.AddonOption
	retired  domain.AddonOption
}

func newFixture(t *testing.T, seats int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	catalog := store.Catalog()

	f := &fixture{
		store: store,
		clock: &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		flight: domain.Flight{
			FlightNumber:   "SU100",
			FromAirport:    "SVO",
			ToAirport:      "LED",
			DepartureTime:  time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
			ArrivalTime:    time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
			TotalSeats:     seats,
			AvailableSeats: seats,
			BasePriceCents: 10000,
		},
		economy:  domain.TicketType{Name: "Economy", PriceMultiplier: 1.0, BaggageAllowanceKg: 20},
		business: domain.TicketType{Name: "Business", PriceMultiplier: 2.5, BaggageAllowanceKg: 30},
	}
	require.NoError(t, catalog.CreateFlight(ctx, &f.flight))
	require.NoError(t, catalog.CreateTicketType(ctx, &f.economy))
	require.NoError(t, catalog.CreateTicketType(ctx, &f.business))

	var err error
	f.bag20, err = domain.NewAddonOption("Extra bag 20kg", domain.AddonCategoryBaggage, 2000, domain.BaggageAddonMetadata(20))
	require.NoError(t, err)
	require.NoError(t, catalog.CreateAddon(ctx, &f.bag20))

	f.meal, err = domain.NewAddonOption("Hot meal", domain.AddonCategoryMeal, 1500, domain.MealAddonMetadata("hot", "vegetarian"))
	require.NoError(t, err)
	require.NoError(t, catalog.CreateAddon(ctx, &f.meal))

	f.retired, err = domain.NewAddonOption("Lounge", domain.AddonCategoryService, 5000, nil)
	require.NoError(t, err)
	f.retired.Active = false
	require.NoError(t, catalog.CreateAddon(ctx, &f.retired))

	return f
}

func (f *fixture) service(opts ...BookingServiceOption) *BookingService {
	opts = append([]BookingServiceOption{WithClock(f.clock.Now)}, opts...)
	return NewBookingService(f.store, f.store.Bookings(), f.store.Flights(), f.store.Catalog(), 30*time.Minute, opts...)
}

func (f *fixture) availableSeats(t *testing.T) int {
	t.Helper()
	flight, err := f.store.Flights().GetByID(context.Background(), f.flight.ID)
	require.NoError(t, err)
	return flight.AvailableSeats
}

func (f *fixture) input(userID int64, names ...string) CreateBookingInput {
	in := CreateBookingInput{UserID: userID, FlightID: f.flight.ID}
	for _, name := range names {
		in.Passengers = append(in.Passengers, PassengerInput{PassengerName: name, TicketTypeID: f.economy.ID})
	}
	return in
}

// assertConserved checks available + seats held by live bookings == total.
func assertConserved(t *testing.T, f *fixture, svc *BookingService, userIDs ...int64) {
	t.Helper()
	held := 0
	for _, userID := range userIDs {
		bookings, err := svc.ListBookings(context.Background(), userID, 0, MaxListLimit)
		require.NoError(t, err)
		for _, b := range bookings {
			if b.Status != domain.BookingStatusCancelled {
				held += b.SeatCount()
			}
		}
	}
	assert.Equal(t, f.flight.TotalSeats, f.availableSeats(t)+held)
}

func TestBookingService_CreateAndConfirm(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, CreateBookingInput{
		UserID:   1,
		FlightID: f.flight.ID,
		Passengers: []PassengerInput{
			{PassengerName: "Anna Petrova", TicketTypeID: f.economy.ID},
			{PassengerName: "Ivan Petrov", TicketTypeID: f.business.ID, AddonIDs: []int64{f.bag20.ID}},
		},
	})
	require.NoError(t, err)

	assert.NotZero(t, booking.ID)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, int64(10000+27000), booking.TotalPriceCents)
	assert.Equal(t, f.clock.Now().Add(30*time.Minute), booking.ExpiresAt)
	require.Len(t, booking.Tickets, 2)
	assert.Equal(t, int64(10000), booking.Tickets[0].FinalPriceCents)
	assert.Equal(t, int64(27000), booking.Tickets[1].FinalPriceCents)
	assert.Equal(t, 20, booking.Tickets[1].ExtraBaggageKg)
	assert.Equal(t, 8, f.availableSeats(t))

	confirmed, err := svc.ConfirmBooking(ctx, booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, 8, f.availableSeats(t))

	stored, err := svc.GetBooking(ctx, booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, stored.Status)
	assert.Len(t, stored.Tickets, 2)
	assertConserved(t, f, svc, 1)
}

func TestBookingService_CreateBooking_IgnoresUnknownAndInactiveAddons(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()

	booking, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		UserID:   1,
		FlightID: f.flight.ID,
		Passengers: []PassengerInput{{
			PassengerName: "Anna Petrova",
			TicketTypeID:  f.economy.ID,
			AddonIDs:      []int64{f.meal.ID, f.retired.ID, 9999},
		}},
	})
	require.NoError(t, err)

	require.Len(t, booking.Tickets, 1)
	assert.Equal(t, int64(10000+1500), booking.Tickets[0].FinalPriceCents)
	assert.Equal(t, []int64{f.meal.ID}, booking.Tickets[0].AddonIDs)
	assert.Zero(t, booking.Tickets[0].ExtraBaggageKg)
}

func TestBookingService_CreateBooking_InvalidInput(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()

	testCases := []struct {
		name  string
		input CreateBookingInput
	}{
		{name: "no passengers", input: CreateBookingInput{UserID: 1, FlightID: f.flight.ID}},
		{name: "blank name", input: f.input(1, "  ")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			booking, err := svc.CreateBooking(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, booking)
			assert.Equal(t, 10, f.availableSeats(t))
		})
	}
}

func TestBookingService_CreateBooking_FlightNotFound(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()

	in := f.input(1, "Anna")
	in.FlightID = 404
	_, err := svc.CreateBooking(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestBookingService_CreateBooking_Oversell(t *testing.T) {
	f := newFixture(t, 2)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, f.input(1, "A", "B", "C"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)

	var seatErr *domain.SeatUnavailableError
	require.True(t, errors.As(err, &seatErr))
	assert.Equal(t, 2, seatErr.Remaining)
	assert.Equal(t, 3, seatErr.Requested)

	assert.Equal(t, 2, f.availableSeats(t))
	bookings, err := svc.ListBookings(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingService_CreateBooking_RollsBackOnMissingTicketType(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		UserID:   1,
		FlightID: f.flight.ID,
		Passengers: []PassengerInput{
			{PassengerName: "Anna", TicketTypeID: f.economy.ID},
			{PassengerName: "Ivan", TicketTypeID: 777},
		},
	})
	assert.ErrorIs(t, err, domain.ErrTicketTypeNotFound)

	assert.Equal(t, 10, f.availableSeats(t))
	bookings, err := svc.ListBookings(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingService_ConcurrentCreateNeverOversells(t *testing.T) {
	const seats, buyers = 5, 25
	f := newFixture(t, seats)
	svc := f.service()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		otherErrs []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), f.input(userID, "Passenger"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrSeatUnavailable):
			default:
				otherErrs = append(otherErrs, err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Empty(t, otherErrs)
	assert.Equal(t, seats, succeeded)
	assert.Equal(t, 0, f.availableSeats(t))

	users := make([]int64, buyers)
	for i := range users {
		users[i] = int64(i + 1)
	}
	assertConserved(t, f, svc, users...)
}

func TestBookingService_ReclaimExpired(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	expiring, err := svc.CreateBooking(ctx, f.input(1, "A", "B", "C"))
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	fresh, err := svc.CreateBooking(ctx, f.input(2, "D"))
	require.NoError(t, err)
	assert.Equal(t, 6, f.availableSeats(t))

	f.clock.Advance(11 * time.Minute)

	count, err := svc.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 9, f.availableSeats(t))

	reclaimed, err := svc.GetBooking(ctx, expiring.ID, AnyUser)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, reclaimed.Status)

	stillHeld, err := svc.GetBooking(ctx, fresh.ID, AnyUser)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, stillHeld.Status)

	count, err = svc.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 9, f.availableSeats(t))

	_, err = svc.ConfirmBooking(ctx, expiring.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assertConserved(t, f, svc, 1, 2)
}

func TestBookingService_ReclaimExpired_SkipsConfirmed(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, f.input(1, "A"))
	require.NoError(t, err)
	_, err = svc.ConfirmBooking(ctx, booking.ID, 1)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	count, err := svc.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 9, f.availableSeats(t))
}

func TestBookingService_ConfirmAfterHoldEnds(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, f.input(1, "A"))
	require.NoError(t, err)

	f.clock.Advance(30*time.Minute + time.Second)
	_, err = svc.ConfirmBooking(ctx, booking.ID, 1)
	assert.ErrorIs(t, err, domain.ErrBookingExpired)

	stored, err := svc.GetBooking(ctx, booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, stored.Status)
	assert.Equal(t, 9, f.availableSeats(t))
}

func TestBookingService_ConfirmAtExactDeadline(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, f.input(1, "A"))
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	confirmed, err := svc.ConfirmBooking(ctx, booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)
}

func TestBookingService_CancelReleasesSeats(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, f.input(1, "A", "B"))
	require.NoError(t, err)
	assert.Equal(t, 8, f.availableSeats(t))

	cancelled, err := svc.CancelBooking(ctx, booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, f.availableSeats(t))
	assertConserved(t, f, svc, 1)
}

func TestBookingService_InvalidTransitions(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	confirmed, err := svc.CreateBooking(ctx, f.input(1, "A"))
	require.NoError(t, err)
	_, err = svc.ConfirmBooking(ctx, confirmed.ID, 1)
	require.NoError(t, err)

	cancelled, err := svc.CreateBooking(ctx, f.input(1, "B"))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, cancelled.ID, 1)
	require.NoError(t, err)

	testCases := []struct {
		name string
		call func() error
		from domain.BookingStatus
		to   domain.BookingStatus
	}{
		{
			name: "confirm confirmed",
			call: func() error { _, err := svc.ConfirmBooking(ctx, confirmed.ID, 1); return err },
			from: domain.BookingStatusConfirmed, to: domain.BookingStatusConfirmed,
		},
		{
			name: "cancel confirmed",
			call: func() error { _, err := svc.CancelBooking(ctx, confirmed.ID, 1); return err },
			from: domain.BookingStatusConfirmed, to: domain.BookingStatusCancelled,
		},
		{
			name: "cancel cancelled",
			call: func() error { _, err := svc.CancelBooking(ctx, cancelled.ID, 1); return err },
			from: domain.BookingStatusCancelled, to: domain.BookingStatusCancelled,
		},
		{
			name: "confirm cancelled",
			call: func() error { _, err := svc.ConfirmBooking(ctx, cancelled.ID, 1); return err },
			from: domain.BookingStatusCancelled, to: domain.BookingStatusConfirmed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var transitionErr *domain.InvalidTransitionError
			require.True(t, errors.As(err, &transitionErr))
			assert.Equal(t, tc.from, transitionErr.From)
			assert.Equal(t, tc.to, transitionErr.To)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
	assert.Equal(t, 9, f.availableSeats(t))
}

func TestBookingService_CancelRacesReclaim(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		booking, err := svc.CreateBooking(ctx, f.input(1, "A", "B"))
		require.NoError(t, err)
		f.clock.Advance(31 * time.Minute)

		var (
			wg        sync.WaitGroup
			cancelErr error
			reclaimed int
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = svc.CancelBooking(ctx, booking.ID, 1)
		}()
		go func() {
			defer wg.Done()
			reclaimed, _ = svc.ReclaimExpired(ctx)
		}()
		wg.Wait()

		if cancelErr == nil {
			assert.Zero(t, reclaimed)
		} else {
			assert.ErrorIs(t, cancelErr, domain.ErrInvalidTransition)
			assert.Equal(t, 1, reclaimed)
		}
		assert.Equal(t, 10, f.availableSeats(t))
	}
}

func TestBookingService_ConfirmRacesReclaim(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		booking, err := svc.CreateBooking(ctx, f.input(1, "A", "B"))
		require.NoError(t, err)
		f.clock.Advance(31 * time.Minute)

		var (
			wg         sync.WaitGroup
			confirmErr error
			reclaimed  int
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = svc.ConfirmBooking(ctx, booking.ID, 1)
		}()
		go func() {
			defer wg.Done()
			reclaimed, _ = svc.ReclaimExpired(ctx)
		}()
		wg.Wait()

		require.Error(t, confirmErr)
		assert.True(t, errors.Is(confirmErr, domain.ErrBookingExpired) || errors.Is(confirmErr, domain.ErrInvalidTransition), confirmErr)
		assert.Equal(t, 1, reclaimed)
		assert.Equal(t, 10, f.availableSeats(t))

		got, err := svc.GetBooking(ctx, booking.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	}
}

func TestBookingService_ConcurrentReclaimNeverDoubleReleases(t *testing.T) {
	f := newFixture(t, 100)
	svc := f.service()
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		_, err := svc.CreateBooking(ctx, f.input(int64(i%4+1), "A"))
		require.NoError(t, err)
	}
	require.Equal(t, 60, f.availableSeats(t))
	f.clock.Advance(31 * time.Minute)

	const sweepers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	wg.Add(sweepers)
	for i := 0; i < sweepers; i++ {
		go func() {
			defer wg.Done()
			n, err := svc.ReclaimExpired(ctx)
			assert.NoError(t, err)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, total)
	assert.Equal(t, 100, f.availableSeats(t))
	assertConserved(t, f, svc, 1, 2, 3, 4)

	n, err := svc.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingService_Ownership(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, f.input(1, "A"))
	require.NoError(t, err)

	_, err = svc.GetBooking(ctx, booking.ID, 2)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	_, err = svc.ConfirmBooking(ctx, booking.ID, 2)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	_, err = svc.CancelBooking(ctx, booking.ID, 2)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	_, err = svc.GetBooking(ctx, 404, 1)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	found, err := svc.GetBooking(ctx, booking.ID, AnyUser)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
	assert.Equal(t, 9, f.availableSeats(t))
}

func TestBookingService_ListBookings(t *testing.T) {
	f := newFixture(t, 10)
	svc := f.service()
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		b, err := svc.CreateBooking(ctx, f.input(1, "A"))
		require.NoError(t, err)
		ids = append(ids, b.ID)
		f.clock.Advance(time.Minute)
	}
	_, err := svc.CreateBooking(ctx, f.input(2, "B"))
	require.NoError(t, err)

	all, err := svc.ListBookings(ctx, 1, -5, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{all[0].ID, all[1].ID, all[2].ID})

	page, err := svc.ListBookings(ctx, 1, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	capped, err := svc.ListBookings(ctx, 1, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, capped, 3)

	beyond, err := svc.ListBookings(ctx, 1, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestBookingService_PublishesEvents(t *testing.T) {
	f := newFixture(t, 10)
	producer := &MockProducer{}
	svc := f.service(WithProducer(producer, "bookings"), WithNotificationsTopic("notifications"))
	ctx := context.Background()

	producer.On("Publish", mock.Anything, "bookings", "booking-1", mock.AnythingOfType("kafka.BookingEvent")).Return(nil)
	producer.On("Publish", mock.Anything, "notifications", "booking-1", mock.AnythingOfType("kafka.BookingEvent")).Return(errors.New("broker down"))

	booking, err := svc.CreateBooking(ctx, f.input(1, "A"))
	require.NoError(t, err)
	require.Equal(t, int64(1), booking.ID)

	_, err = svc.ConfirmBooking(ctx, booking.ID, 1)
	require.NoError(t, err)

	producer.AssertNumberOfCalls(t, "Publish", 4)
	var types []string
	for _, call := range producer.Calls {
		if call.Arguments.String(1) == "bookings" {
			types = append(types, call.Arguments.Get(3).(kafka.BookingEvent).Type)
		}
	}
	assert.Equal(t, []string{kafka.EventBookingCreated, kafka.EventBookingConfirmed}, types)
}

func TestBookingService_PublishesExpiredEvent(t *testing.T) {
	f := newFixture(t, 10)
	producer := &MockProducer{}
	svc := f.service(WithProducer(producer, "bookings"))
	ctx := context.Background()

	producer.On("Publish", mock.Anything, "bookings", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateBooking(ctx, f.input(1, "A", "B"))
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = svc.ReclaimExpired(ctx)
	require.NoError(t, err)

	require.Len(t, producer.Calls, 2)
	event := producer.Calls[1].Arguments.Get(3).(kafka.BookingEvent)
	assert.Equal(t, kafka.EventBookingExpired, event.Type)
	assert.Equal(t, "CANCELLED", event.Status)
	assert.Equal(t, 2, event.Seats)
}

func TestBookingService_InvalidatesFlightCache(t *testing.T) {
	f := newFixture(t, 10)
	cache := &MockCache{}
	svc := f.service(WithCache(cache))
	ctx := context.Background()

	cache.On("InvalidateFlight", mock.Anything, f.flight.ID).Return(errors.New("redis unavailable"))

	first, err := svc.CreateBooking(ctx, f.input(1, "A"))
	require.NoError(t, err)
	second, err := svc.CreateBooking(ctx, f.input(1, "B"))
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(ctx, first.ID, 1)
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, second.ID, 1)
	require.NoError(t, err)

	cache.AssertNumberOfCalls(t, "InvalidateFlight", 3)
	_, err = svc.CreateBooking(ctx, CreateBookingInput{UserID: 1, FlightID: f.flight.ID})
	assert.Error(t, err)
	cache.AssertNumberOfCalls(t, "InvalidateFlight", 3)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(&domain.SeatUnavailableError{}))
	assert.True(t, IsClientError(domain.ErrBookingExpired))
	assert.False(t, IsClientError(errors.New("connection reset")))
	assert.False(t, IsClientError(context.DeadlineExceeded))
}
