package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerRequest struct {
	PassengerName string  `json:"passenger_name" binding:"required"`
	TicketTypeID  int64   `json:"ticket_type_id" binding:"required"`
	AddonIDs      []int64 `json:"addon_ids"`
}

type createBookingRequest struct {
	FlightID   int64              `json:"flight_id" binding:"required"`
	Passengers []passengerRequest `json:"passengers" binding:"required,min=1,dive"`
}

type ticketResponse struct {
	ID              int64   `json:"id"`
	TicketTypeID    int64   `json:"ticket_type_id"`
	PassengerName   string  `json:"passenger_name"`
	FinalPriceCents int64   `json:"final_price_cents"`
	ExtraBaggageKg  int     `json:"extra_baggage_kg"`
	AddonIDs        []int64 `json:"addon_ids"`
}

type bookingResponse struct {
	ID              int64            `json:"id"`
	FlightID        int64            `json:"flight_id"`
	Status          string           `json:"status"`
	TotalPriceCents int64            `json:"total_price_cents"`
	ExpiresAt       string           `json:"expires_at"`
	CreatedAt       string           `json:"created_at"`
	Tickets         []ticketResponse `json:"tickets"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.POST("/cleanup/expired", h.cleanupExpired)
	router.GET("/:id", h.get)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := booking.CreateBookingInput{
		UserID:     currentUser(c),
		FlightID:   req.FlightID,
		Passengers: make([]booking.PassengerInput, 0, len(req.Passengers)),
	}
	for _, p := range req.Passengers {
		input.Passengers = append(input.Passengers, booking.PassengerInput{
			PassengerName: p.PassengerName,
			TicketTypeID:  p.TicketTypeID,
			AddonIDs:      p.AddonIDs,
		})
	}

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		badRequest(c, "skip must be an integer")
		return
	}
	limit, err := queryInt(c, "limit", booking.DefaultListLimit)
	if err != nil {
		badRequest(c, "limit must be an integer")
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), currentUser(c), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	found, err := h.service.GetBooking(c.Request.Context(), id, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	confirmed, err := h.service.ConfirmBooking(c.Request.Context(), id, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(confirmed))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cancelled, err := h.service.CancelBooking(c.Request.Context(), id, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) cleanupExpired(c *gin.Context) {
	count, err := h.service.ReclaimExpired(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reclaimed": count})
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:              b.ID,
		FlightID:        b.FlightID,
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		ExpiresAt:       b.ExpiresAt.Format(time.RFC3339),
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		Tickets:         make([]ticketResponse, 0, len(b.Tickets)),
	}
	for _, t := range b.Tickets {
		addonIDs := t.AddonIDs
		if addonIDs == nil {
			addonIDs = []int64{}
		}
		resp.Tickets = append(resp.Tickets, ticketResponse{
			ID:              t.ID,
			TicketTypeID:    t.TicketTypeID,
			PassengerName:   t.PassengerName,
			FinalPriceCents: t.FinalPriceCents,
			ExtraBaggageKg:  t.ExtraBaggageKg,
			AddonIDs:        addonIDs,
		})
	}
	return resp
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
