package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID             int64  `json:"id"`
	FlightNumber   string `json:"flight_number"`
	FromAirport    string `json:"from_airport"`
	ToAirport      string `json:"to_airport"`
	DepartureTime  string `json:"departure_time"`
	ArrivalTime    string `json:"arrival_time"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
	BasePriceCents int64  `json:"base_price_cents"`
}

type ticketTypeResponse struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	PriceMultiplier    float64 `json:"price_multiplier"`
	BaggageAllowanceKg int     `json:"baggage_allowance_kg"`
}

type addonResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	PriceCents  int64           `json:"price_cents"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.list)
	router.GET("/flights/:id", h.get)
	router.GET("/ticket-types", h.ticketTypes)
	router.GET("/addons", h.addons)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]flightResponse, 0, len(list))
	for i := range list {
		out = append(out, toFlightResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) ticketTypes(c *gin.Context) {
	types, err := h.service.ListTicketTypes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]ticketTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, ticketTypeResponse{
			ID:                 t.ID,
			Name:               t.Name,
			PriceMultiplier:    t.PriceMultiplier,
			BaggageAllowanceKg: t.BaggageAllowanceKg,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) addons(c *gin.Context) {
	addons, err := h.service.ListAddons(c.Request.Context(), domain.AddonCategory(c.Query("category")))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]addonResponse, 0, len(addons))
	for _, a := range addons {
		resp := addonResponse{
			ID:          a.ID,
			Name:        a.Name,
			Category:    string(a.Category),
			Description: a.Description,
			PriceCents:  a.PriceCents,
		}
		if raw, err := a.Metadata.Encode(); err == nil && len(raw) > 0 {
			resp.Metadata = raw
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:             f.ID,
		FlightNumber:   f.FlightNumber,
		FromAirport:    f.FromAirport,
		ToAirport:      f.ToAirport,
		DepartureTime:  f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:    f.ArrivalTime.Format(time.RFC3339),
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.AvailableSeats,
		BasePriceCents: f.BasePriceCents,
	}
}
