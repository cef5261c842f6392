// Package sweeper periodically reclaims seats held by expired PENDING bookings.
package sweeper

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/google/uuid"
)

const lockName = "booking-expiration-sweep"

type Reclaimer interface {
	ReclaimExpired(ctx context.Context) (int, error)
}

// Locker is a distributed mutex so that only one replica sweeps per tick.
type Locker interface {
	AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, owner string) error
}

type Sweeper struct {
	reclaimer Reclaimer
	locker    Locker
	interval  time.Duration
	lockTTL   time.Duration
	owner     string
	log       *logger.Logger
}

type Option func(*Sweeper)

// WithLocker makes each sweep skip when another replica holds the lock.
func WithLocker(locker Locker, ttl time.Duration) Option {
	return func(s *Sweeper) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Sweeper) {
		s.log = log
	}
}

func New(reclaimer Reclaimer, interval time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		reclaimer: reclaimer,
		interval:  interval,
		owner:     uuid.NewString(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lockTTL <= 0 {
		s.lockTTL = interval
	}
	return s
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.InfoContext(ctx, "expiration sweeper started", "interval", s.interval.String())
	for {
		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.ErrorContext(ctx, "expiration sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.log.Info("expiration sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce runs a single reclamation pass. It returns 0 without error when
// another replica holds the sweep lock.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	if s.locker != nil {
		ok, err := s.locker.AcquireLock(ctx, lockName, s.owner, s.lockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			s.log.DebugContext(ctx, "sweep lock held elsewhere, skipping")
			return 0, nil
		}
		defer func() {
			if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), lockName, s.owner); err != nil {
				s.log.WarnContext(ctx, "failed to release sweep lock", "error", err)
			}
		}()
	}

	count, err := s.reclaimer.ReclaimExpired(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.InfoContext(ctx, "expired bookings reclaimed", "count", count)
	}
	return count, nil
}
