package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTP:    config.HTTPConfig{Address: "127.0.0.1:0", ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5, RateLimitRPS: 100, RateLimitBurst: 100},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
	}
}

func TestOpenStorage_Memory(t *testing.T) {
	storage, err := OpenStorage(context.Background(), testConfig())
	require.NoError(t, err)
	defer storage.Close()

	assert.NotNil(t, storage.Tx)
	assert.NotNil(t, storage.Flights)
	assert.NotNil(t, storage.Bookings)
	assert.NotNil(t, storage.Catalog)
	assert.NotNil(t, storage.Writer)
}

func TestOpenStorage_MemoryStartsWithCatalog(t *testing.T) {
	ctx := context.Background()
	storage, err := OpenStorage(ctx, testConfig())
	require.NoError(t, err)
	defer storage.Close()

	flightList, err := storage.Flights.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, flightList)

	types, err := storage.Catalog.ListTicketTypes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, types)
}

func TestNewServer_ServesHealth(t *testing.T) {
	cfg := testConfig()
	storage, err := OpenStorage(context.Background(), cfg)
	require.NoError(t, err)

	flightSvc := flights.NewFlightService(storage.Flights, storage.Catalog, nil, nil)
	bookingSvc := booking.NewBookingService(storage.Tx, storage.Bookings, storage.Flights, storage.Catalog, time.Minute)
	srv := NewServer(cfg, logger.Nop(), flightSvc, bookingSvc)

	assert.Equal(t, 5*time.Second, srv.ReadTimeout)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	storage, err := OpenStorage(context.Background(), cfg)
	require.NoError(t, err)

	flightSvc := flights.NewFlightService(storage.Flights, storage.Catalog, nil, nil)
	bookingSvc := booking.NewBookingService(storage.Tx, storage.Bookings, storage.Flights, storage.Catalog, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, logger.Nop(), flightSvc, bookingSvc) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
