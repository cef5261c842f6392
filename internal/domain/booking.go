package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// DefaultHoldTTL is how long a PENDING booking keeps its seats.
const DefaultHoldTTL = 30 * time.Minute

// IsTerminal reports whether no transition can leave the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled
}

// CanTransitionTo reports whether s -> next is a legal booking transition.
// Only PENDING has outgoing edges.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s != BookingStatusPending {
		return false
	}
	return next == BookingStatusConfirmed || next == BookingStatusCancelled
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID              int64
	UserID          int64
	FlightID        int64
	Status          BookingStatus
	TotalPriceCents int64
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Tickets         []Ticket
}

// SeatCount is the number of seats the booking holds on its flight.
func (b *Booking) SeatCount() int {
	return len(b.Tickets)
}

// IsExpired reports whether the hold deadline has passed at now.
func (b *Booking) IsExpired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}

type Ticket struct {
	ID              int64
	BookingID       int64
	FlightID        int64
	TicketTypeID    int64
	PassengerName   string
	FinalPriceCents int64
	ExtraBaggageKg  int
	AddonIDs        []int64
}
