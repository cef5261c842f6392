package domain

import "time"

type Flight struct {
	ID             int64
	FlightNumber   string
	FromAirport    string
	ToAirport      string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	TotalSeats     int
	AvailableSeats int
	BasePriceCents int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultBaggageAllowanceKg applies to ticket types created without an explicit allowance.
const DefaultBaggageAllowanceKg = 20

type TicketType struct {
	ID                 int64
	Name               string
	PriceMultiplier    float64
	BaggageAllowanceKg int
}
