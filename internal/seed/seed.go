// Package seed fills an empty catalog with sample flights, ticket types and add-ons.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type Result struct {
	Flights     int
	TicketTypes int
	Addons      int
}

func TicketTypes() []domain.TicketType {
	return []domain.TicketType{
		{Name: "Economy", PriceMultiplier: 1.0, BaggageAllowanceKg: 20},
		{Name: "Business", PriceMultiplier: 2.5, BaggageAllowanceKg: 30},
		{Name: "First", PriceMultiplier: 4.0, BaggageAllowanceKg: 40},
	}
}

// Flights returns sample flights departing on consecutive days after from.
func Flights(from time.Time) []domain.Flight {
	day := from.Truncate(24 * time.Hour).Add(24 * time.Hour)
	routes := []struct {
		number   string
		from, to string
		depart   time.Duration
		duration time.Duration
		seats    int
		price    int64
	}{
		{"SU1402", "SVO", "LED", 8 * time.Hour, 90 * time.Minute, 180, 650000},
		{"SU1130", "SVO", "AER", 11 * time.Hour, 2*time.Hour + 30*time.Minute, 160, 890000},
		{"DP405", "VKO", "KZN", 14 * time.Hour, 95 * time.Minute, 120, 420000},
		{"S72045", "DME", "OVB", 23 * time.Hour, 4 * time.Hour, 150, 1150000},
	}

	flights := make([]domain.Flight, 0, len(routes))
	for i, r := range routes {
		departure := day.Add(time.Duration(i) * 24 * time.Hour).Add(r.depart)
		flights = append(flights, domain.Flight{
			FlightNumber:   r.number,
			FromAirport:    r.from,
			ToAirport:      r.to,
			DepartureTime:  departure,
			ArrivalTime:    departure.Add(r.duration),
			TotalSeats:     r.seats,
			AvailableSeats: r.seats,
			BasePriceCents: r.price,
		})
	}
	return flights
}

// Addons builds the sample add-ons. Metadata is validated on construction.
func Addons() ([]domain.AddonOption, error) {
	specs := []struct {
		name        string
		category    domain.AddonCategory
		description string
		price       int64
		metadata    *domain.AddonMetadata
	}{
		{"Extra bag 10kg", domain.AddonCategoryBaggage, "One additional checked bag", 150000, domain.BaggageAddonMetadata(10)},
		{"Extra bag 23kg", domain.AddonCategoryBaggage, "One additional heavy checked bag", 250000, domain.BaggageAddonMetadata(23)},
		{"Hot meal", domain.AddonCategoryMeal, "Hot meal with a drink", 60000, domain.MealAddonMetadata("hot")},
		{"Vegetarian meal", domain.AddonCategoryMeal, "Hot vegetarian meal", 65000, domain.MealAddonMetadata("hot", "vegetarian")},
		{"Window seat", domain.AddonCategorySeat, "Guaranteed window seat", 40000, domain.SeatAddonMetadata("window", false)},
		{"Exit row seat", domain.AddonCategorySeat, "Seat with extra legroom", 90000, domain.SeatAddonMetadata("exit_row", true)},
		{"Priority boarding", domain.AddonCategoryService, "Board the aircraft first", 50000, domain.ServiceAddonMetadata("priority_boarding", nil)},
		{"Lounge access", domain.AddonCategoryService, "Business lounge before departure", 300000, domain.ServiceAddonMetadata("lounge", map[string]string{"duration": "3h"})},
	}

	addons := make([]domain.AddonOption, 0, len(specs))
	for _, s := range specs {
		addon, err := domain.NewAddonOption(s.name, s.category, s.price, s.metadata)
		if err != nil {
			return nil, fmt.Errorf("add-on %q: %w", s.name, err)
		}
		addon.Description = s.description
		addons = append(addons, addon)
	}
	return addons, nil
}

// Catalog writes the sample catalog through w.
func Catalog(ctx context.Context, w repository.CatalogWriter, now time.Time) (Result, error) {
	var res Result

	for _, t := range TicketTypes() {
		if err := w.CreateTicketType(ctx, &t); err != nil {
			return res, fmt.Errorf("ticket type %s: %w", t.Name, err)
		}
		res.TicketTypes++
	}

	for _, f := range Flights(now) {
		if err := w.CreateFlight(ctx, &f); err != nil {
			return res, fmt.Errorf("flight %s: %w", f.FlightNumber, err)
		}
		res.Flights++
	}

	addons, err := Addons()
	if err != nil {
		return res, err
	}
	for i := range addons {
		if err := w.CreateAddon(ctx, &addons[i]); err != nil {
			return res, fmt.Errorf("add-on %s: %w", addons[i].Name, err)
		}
		res.Addons++
	}
	return res, nil
}
