// Package memory is an in-process implementation of the repository interfaces.
//
// Locking reads take a per-row lock that is held until the surrounding
// transaction ends, and writes are staged on the transaction and applied
// together at commit, so it honours the same unit-of-work contract as the
// Postgres repositories. Non-locking reads see committed state plus the
// caller's own staged writes.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	flights  map[int64]domain.Flight
	types    map[int64]domain.TicketType
	addons   map[int64]domain.AddonOption
	bookings map[int64]domain.Booking

	nextFlightID  atomic.Int64
	nextTypeID    atomic.Int64
	nextAddonID   atomic.Int64
	nextBookingID atomic.Int64
	nextTicketID  atomic.Int64

	locksMu sync.Mutex
	locks   map[string]*rowLock
}

// rowLock is dropped from Store.locks once no transaction holds or waits on it.
type rowLock struct {
	ch   chan struct{}
	refs int
}

func NewStore() *Store {
	return &Store{
		flights:  make(map[int64]domain.Flight),
		types:    make(map[int64]domain.TicketType),
		addons:   make(map[int64]domain.AddonOption),
		bookings: make(map[int64]domain.Booking),
		locks:    make(map[string]*rowLock),
	}
}

type txKey struct{}

type statusChange struct {
	to domain.BookingStatus
	at time.Time
}

type tx struct {
	held    map[string]struct{}
	seats   map[int64]int
	created map[int64]domain.Booking
	status  map[int64]statusChange
}

func newTx() *tx {
	return &tx{
		held:    make(map[string]struct{}),
		seats:   make(map[int64]int),
		created: make(map[int64]domain.Booking),
		status:  make(map[int64]statusChange),
	}
}

func txFrom(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	t := newTx()
	defer s.unlockAll(t)

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	s.commit(t)
	return nil
}

func (s *Store) commit(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, delta := range t.seats {
		f := s.flights[id]
		f.AvailableSeats += delta
		f.UpdatedAt = now
		s.flights[id] = f
	}
	for id, b := range t.created {
		s.bookings[id] = cloneBooking(b)
	}
	for id, change := range t.status {
		b := s.bookings[id]
		b.Status = change.to
		b.UpdatedAt = change.at
		s.bookings[id] = b
	}
}

// lock blocks until the row lock is free or ctx is done. Locks are re-entrant
// within one transaction.
func (s *Store) lock(ctx context.Context, t *tx, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}

	s.locksMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.refs++
	s.locksMu.Unlock()

	select {
	case l.ch <- struct{}{}:
		t.held[key] = struct{}{}
		return nil
	case <-ctx.Done():
		s.locksMu.Lock()
		s.dropRef(key, l)
		s.locksMu.Unlock()
		return ctx.Err()
	}
}

func (s *Store) unlockAll(t *tx) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	for key := range t.held {
		l := s.locks[key]
		<-l.ch
		s.dropRef(key, l)
	}
}

// dropRef must be called with locksMu held.
func (s *Store) dropRef(key string, l *rowLock) {
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

// lockCount reports how many row locks are tracked.
func (s *Store) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func flightKey(id int64) string  { return fmt.Sprintf("flight:%d", id) }
func bookingKey(id int64) string { return fmt.Sprintf("booking:%d", id) }

// flight returns the committed flight with the caller's staged seat delta applied.
func (s *Store) flight(ctx context.Context, id int64) (domain.Flight, bool) {
	s.mu.RLock()
	f, ok := s.flights[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Flight{}, false
	}
	if t, inTx := txFrom(ctx); inTx {
		f.AvailableSeats += t.seats[id]
	}
	return f, true
}

// booking returns the committed or staged booking with staged status applied.
func (s *Store) booking(ctx context.Context, id int64) (domain.Booking, bool) {
	s.mu.RLock()
	b, ok := s.bookings[id]
	s.mu.RUnlock()

	t, inTx := txFrom(ctx)
	if !ok && inTx {
		b, ok = t.created[id]
	}
	if !ok {
		return domain.Booking{}, false
	}
	b = cloneBooking(b)
	if inTx {
		if change, changed := t.status[id]; changed {
			b.Status = change.to
			b.UpdatedAt = change.at
		}
	}
	return b, true
}

func cloneBooking(b domain.Booking) domain.Booking {
	out := b
	out.Tickets = make([]domain.Ticket, len(b.Tickets))
	for i, t := range b.Tickets {
		t.AddonIDs = append([]int64(nil), t.AddonIDs...)
		out.Tickets[i] = t
	}
	return out
}

func (s *Store) Flights() repository.FlightRepository { return &flightRepo{s: s} }

func (s *Store) Bookings() repository.BookingRepository { return &bookingRepo{s: s} }

// Catalog returns the ticket-type and add-on repository, which also writes reference data.
func (s *Store) Catalog() *CatalogRepo { return &CatalogRepo{s: s} }

type flightRepo struct{ s *Store }

func (r *flightRepo) List(ctx context.Context) ([]domain.Flight, error) {
	r.s.mu.RLock()
	ids := make([]int64, 0, len(r.s.flights))
	for id := range r.s.flights {
		ids = append(ids, id)
	}
	r.s.mu.RUnlock()

	flights := make([]domain.Flight, 0, len(ids))
	for _, id := range ids {
		if f, ok := r.s.flight(ctx, id); ok {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].ID < flights[j].ID
		}
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

func (r *flightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, ok := r.s.flight(ctx, id)
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &f, nil
}

func (r *flightRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	var out *domain.Flight
	err := r.s.WithTx(ctx, func(ctx context.Context) error {
		t, _ := txFrom(ctx)
		if err := r.s.lock(ctx, t, flightKey(id)); err != nil {
			return err
		}
		f, ok := r.s.flight(ctx, id)
		if !ok {
			return domain.ErrFlightNotFound
		}
		out = &f
		return nil
	})
	return out, err
}

func (r *flightRepo) ReserveSeats(ctx context.Context, flightID int64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: seat count must be positive", domain.ErrInvalidInput)
	}
	var remaining int
	err := r.s.WithTx(ctx, func(ctx context.Context) error {
		t, _ := txFrom(ctx)
		if err := r.s.lock(ctx, t, flightKey(flightID)); err != nil {
			return err
		}
		f, ok := r.s.flight(ctx, flightID)
		if !ok {
			return domain.ErrFlightNotFound
		}
		if f.AvailableSeats < n {
			remaining = f.AvailableSeats
			return &domain.SeatUnavailableError{FlightID: flightID, Requested: n, Remaining: f.AvailableSeats}
		}
		t.seats[flightID] -= n
		remaining = f.AvailableSeats - n
		return nil
	})
	return remaining, err
}

func (r *flightRepo) ReleaseSeats(ctx context.Context, flightID int64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: seat count must be positive", domain.ErrInvalidInput)
	}
	var remaining int
	err := r.s.WithTx(ctx, func(ctx context.Context) error {
		t, _ := txFrom(ctx)
		if err := r.s.lock(ctx, t, flightKey(flightID)); err != nil {
			return err
		}
		f, ok := r.s.flight(ctx, flightID)
		if !ok {
			return domain.ErrFlightNotFound
		}
		if f.AvailableSeats+n > f.TotalSeats {
			return fmt.Errorf("release %d seats on flight %d: %w", n, flightID, domain.ErrCapacityExceeded)
		}
		t.seats[flightID] += n
		remaining = f.AvailableSeats + n
		return nil
	})
	return remaining, err
}

type bookingRepo struct{ s *Store }

func (r *bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return r.s.WithTx(ctx, func(ctx context.Context) error {
		t, _ := txFrom(ctx)
		b.ID = r.s.nextBookingID.Add(1)
		b.UpdatedAt = b.CreatedAt
		for i := range b.Tickets {
			b.Tickets[i].ID = r.s.nextTicketID.Add(1)
			b.Tickets[i].BookingID = b.ID
		}
		t.created[b.ID] = cloneBooking(*b)
		return nil
	})
}

func (r *bookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, ok := r.s.booking(ctx, id)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (r *bookingRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.s.WithTx(ctx, func(ctx context.Context) error {
		t, _ := txFrom(ctx)
		if err := r.s.lock(ctx, t, bookingKey(id)); err != nil {
			return err
		}
		b, ok := r.s.booking(ctx, id)
		if !ok {
			return domain.ErrBookingNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID int64, skip, limit int) ([]domain.Booking, error) {
	r.s.mu.RLock()
	var ids []int64
	for id, b := range r.s.bookings {
		if b.UserID == userID {
			ids = append(ids, id)
		}
	}
	r.s.mu.RUnlock()
	if t, ok := txFrom(ctx); ok {
		for id, b := range t.created {
			if b.UserID == userID {
				ids = append(ids, id)
			}
		}
	}

	bookings := make([]domain.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.s.booking(ctx, id); ok {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	if skip >= len(bookings) {
		return []domain.Booking{}, nil
	}
	bookings = bookings[skip:]
	if limit < len(bookings) {
		bookings = bookings[:limit]
	}
	return bookings, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error {
	return r.s.WithTx(ctx, func(ctx context.Context) error {
		t, _ := txFrom(ctx)
		if err := r.s.lock(ctx, t, bookingKey(id)); err != nil {
			return err
		}
		b, ok := r.s.booking(ctx, id)
		if !ok {
			return domain.ErrBookingNotFound
		}
		if b.Status != from {
			return fmt.Errorf("booking %d is no longer %s: %w", id, from, domain.ErrInvalidTransition)
		}
		t.status[id] = statusChange{to: to, at: at}
		return nil
	})
}

func (r *bookingRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	r.s.mu.RLock()
	expired := make([]domain.Booking, 0)
	for _, b := range r.s.bookings {
		if b.Status == domain.BookingStatusPending && b.ExpiresAt.Before(now) {
			expired = append(expired, b)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(expired, func(i, j int) bool {
		if expired[i].ExpiresAt.Equal(expired[j].ExpiresAt) {
			return expired[i].ID < expired[j].ID
		}
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}

	ids := make([]int64, len(expired))
	for i, b := range expired {
		ids[i] = b.ID
	}
	return ids, nil
}

type CatalogRepo struct{ s *Store }

func (r *CatalogRepo) GetTicketType(_ context.Context, id int64) (*domain.TicketType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.types[id]
	if !ok {
		return nil, domain.ErrTicketTypeNotFound
	}
	return &t, nil
}

func (r *CatalogRepo) ListTicketTypes(_ context.Context) ([]domain.TicketType, error) {
	r.s.mu.RLock()
	types := make([]domain.TicketType, 0, len(r.s.types))
	for _, t := range r.s.types {
		types = append(types, t)
	}
	r.s.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool {
		if types[i].PriceMultiplier == types[j].PriceMultiplier {
			return types[i].ID < types[j].ID
		}
		return types[i].PriceMultiplier < types[j].PriceMultiplier
	})
	return types, nil
}

func (r *CatalogRepo) GetAddons(_ context.Context, ids []int64) ([]domain.AddonOption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	addons := make([]domain.AddonOption, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if a, ok := r.s.addons[id]; ok {
			addons = append(addons, a)
		}
	}
	sort.Slice(addons, func(i, j int) bool { return addons[i].ID < addons[j].ID })
	return addons, nil
}

func (r *CatalogRepo) ListAddons(_ context.Context, category domain.AddonCategory) ([]domain.AddonOption, error) {
	r.s.mu.RLock()
	addons := make([]domain.AddonOption, 0)
	for _, a := range r.s.addons {
		if a.Active && (category == "" || a.Category == category) {
			addons = append(addons, a)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(addons, func(i, j int) bool {
		a, b := addons[i], addons[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PriceCents < b.PriceCents
	})
	return addons, nil
}

func (r *CatalogRepo) CreateFlight(_ context.Context, f *domain.Flight) error {
	if f.TotalSeats < 0 || f.AvailableSeats < 0 || f.AvailableSeats > f.TotalSeats {
		return fmt.Errorf("%w: seats must satisfy 0 <= available <= total", domain.ErrInvalidInput)
	}
	f.ID = r.s.nextFlightID.Add(1)
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt

	r.s.mu.Lock()
	r.s.flights[f.ID] = *f
	r.s.mu.Unlock()
	return nil
}

func (r *CatalogRepo) CreateTicketType(_ context.Context, t *domain.TicketType) error {
	if t.PriceMultiplier < 0 {
		return fmt.Errorf("%w: price multiplier must not be negative", domain.ErrInvalidInput)
	}
	if t.BaggageAllowanceKg == 0 {
		t.BaggageAllowanceKg = domain.DefaultBaggageAllowanceKg
	}
	t.ID = r.s.nextTypeID.Add(1)

	r.s.mu.Lock()
	r.s.types[t.ID] = *t
	r.s.mu.Unlock()
	return nil
}

func (r *CatalogRepo) CreateAddon(_ context.Context, a *domain.AddonOption) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.ID = r.s.nextAddonID.Add(1)

	r.s.mu.Lock()
	r.s.addons[a.ID] = *a
	r.s.mu.Unlock()
	return nil
}

var (
	_ repository.Transactor        = (*Store)(nil)
	_ repository.FlightRepository  = (*flightRepo)(nil)
	_ repository.BookingRepository = (*bookingRepo)(nil)
	_ repository.CatalogRepository = (*CatalogRepo)(nil)
	_ repository.CatalogWriter     = (*CatalogRepo)(nil)
)
