// Package pricing turns catalog snapshots into per-ticket prices and baggage allowances.
// Amounts are integer cents; rounding a decimal price to two places is rounding to the cent.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

var weightInName = regexp.MustCompile(`(\d+)\s*kg`)

type PassengerQuote struct {
	TicketPriceCents int64
	AddonsCents      int64
	FinalPriceCents  int64
	ExtraBaggageKg   int
	TotalBaggageKg   int
	AppliedAddonIDs  []int64
}

// TicketPrice returns basePriceCents * multiplier rounded half away from zero to the cent.
func TicketPrice(basePriceCents int64, multiplier float64) int64 {
	return int64(math.Round(float64(basePriceCents) * multiplier))
}

// AddonTotal sums the prices of active add-ons. Inactive ones contribute nothing.
func AddonTotal(addons []domain.AddonOption) int64 {
	var total int64
	for _, a := range addons {
		if a.Active {
			total += a.PriceCents
		}
	}
	return total
}

// ExtraBaggageKg sums the weight of active baggage add-ons.
func ExtraBaggageKg(addons []domain.AddonOption) int {
	total := 0
	for _, a := range addons {
		if a.Active && a.Category == domain.AddonCategoryBaggage {
			total += BaggageWeightKg(a)
		}
	}
	return total
}

// BaggageWeightKg reads the weight from structured metadata and only falls back to
// a "<N>kg" pattern in the display name when the metadata carries none.
func BaggageWeightKg(a domain.AddonOption) int {
	if a.Metadata != nil && a.Metadata.Baggage != nil && a.Metadata.Baggage.WeightKg > 0 {
		return a.Metadata.Baggage.WeightKg
	}
	m := weightInName.FindStringSubmatch(strings.ToLower(a.Name))
	if m == nil {
		return 0
	}
	kg, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return kg
}

// Quote prices one passenger's ticket.
func Quote(flight domain.Flight, ticketType domain.TicketType, addons []domain.AddonOption) PassengerQuote {
	q := PassengerQuote{
		TicketPriceCents: TicketPrice(flight.BasePriceCents, ticketType.PriceMultiplier),
		AddonsCents:      AddonTotal(addons),
		ExtraBaggageKg:   ExtraBaggageKg(addons),
	}
	q.FinalPriceCents = q.TicketPriceCents + q.AddonsCents
	q.TotalBaggageKg = ticketType.BaggageAllowanceKg + q.ExtraBaggageKg
	for _, a := range addons {
		if a.Active {
			q.AppliedAddonIDs = append(q.AppliedAddonIDs, a.ID)
		}
	}
	return q
}
