package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFlightNotFound     = errors.New("flight not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrBookingExpired     = errors.New("booking hold has expired")
	ErrSeatUnavailable    = errors.New("not enough seats available")
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrInvalidInput       = errors.New("invalid input")
)

// SeatUnavailableError reports a reservation that does not fit the flight's remaining seats.
type SeatUnavailableError struct {
	FlightID  int64
	Requested int
	Remaining int
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("flight %d has %d seats left, %d requested", e.FlightID, e.Remaining, e.Requested)
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

type InvalidTransitionError struct {
	BookingID int64
	From      BookingStatus
	To        BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %d cannot move from %s to %s", e.BookingID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ErrCapacityExceeded means a release would push a flight above its capacity,
// which only happens if the ledger and the bookings disagree.
var ErrCapacityExceeded = errors.New("seat release exceeds flight capacity")
