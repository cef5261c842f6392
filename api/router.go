package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the catalog and booking handlers under /api/v1. Catalog reads
// are public; every booking route requires an authenticated user.
func NewRouter(cfg *config.Config, log *logger.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(log),
		RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	NewFlightHandler(flightSvc).Register(v1)
	NewBookingHandler(bookingSvc).Register(v1.Group("/bookings", Auth(cfg.Auth.JWTSecret)))

	return router
}
