package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const (
	codeInvalidInput      = "invalid_input"
	codeUnauthorized      = "unauthorized"
	codeNotFound          = "not_found"
	codeSeatUnavailable   = "seat_unavailable"
	codeInvalidTransition = "invalid_transition"
	codeBookingExpired    = "booking_expired"
	codeRateLimited       = "rate_limited"
	codeInternal          = "internal_error"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// statusFor maps an engine error to its HTTP status and response body.
func statusFor(err error) (int, errorResponse) {
	var seatErr *domain.SeatUnavailableError
	var transitionErr *domain.InvalidTransitionError

	switch {
	case errors.As(err, &seatErr):
		return http.StatusConflict, errorResponse{
			Code:    codeSeatUnavailable,
			Message: seatErr.Error(),
			Details: map[string]any{"remaining": seatErr.Remaining, "requested": seatErr.Requested},
		}
	case errors.As(err, &transitionErr):
		return http.StatusConflict, errorResponse{
			Code:    codeInvalidTransition,
			Message: transitionErr.Error(),
			Details: map[string]any{"from": string(transitionErr.From), "to": string(transitionErr.To)},
		}
	case errors.Is(err, domain.ErrSeatUnavailable):
		return http.StatusConflict, errorResponse{Code: codeSeatUnavailable, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, errorResponse{Code: codeInvalidTransition, Message: err.Error()}
	case errors.Is(err, domain.ErrBookingExpired):
		return http.StatusGone, errorResponse{Code: codeBookingExpired, Message: err.Error()}
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrTicketTypeNotFound):
		return http.StatusNotFound, errorResponse{Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Code: codeInvalidInput, Message: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Code: codeInternal, Message: "internal server error"}
}

// writeError attaches system failures to the context so RequestLogger reports them.
func writeError(c *gin.Context, err error) {
	status, body := statusFor(err)
	if !booking.IsClientError(err) {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: codeInvalidInput, Message: message})
}
