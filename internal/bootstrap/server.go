package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Run serves the HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) error {
	srv := NewServer(cfg, log, flightSvc, bookingSvc)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "address", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http %s: %w", cfg.HTTP.Address, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewServer(cfg *config.Config, log *logger.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	return &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      api.NewRouter(cfg, log, flightSvc, bookingSvc),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}
}
