package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return m.GetByID(ctx, id)
}

func (m *MockFlightRepository) ReserveSeats(ctx context.Context, flightID int64, n int) (int, error) {
	args := m.Called(ctx, flightID, n)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, n int) (int, error) {
	args := m.Called(ctx, flightID, n)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func sampleFlights() []domain.Flight {
	return []domain.Flight{
		{
			ID:             4,
			FlightNumber:   "SU10",
			FromAirport:    "SVO",
			ToAirport:      "LED",
			DepartureTime:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
			ArrivalTime:    time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC),
			TotalSeats:     150,
			AvailableSeats: 149,
			BasePriceCents: 500000,
		},
	}
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, mockCache, nil)
	ctx := context.Background()

	flights := sampleFlights()
	mockCache.On("GetFlights", ctx).Return(nil, nil)
	mockRepo.On("List", ctx).Return(flights, nil)
	mockCache.On("SetFlights", ctx, flights).Return(nil)

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, mockCache, nil)
	ctx := context.Background()

	flights := sampleFlights()
	mockCache.On("GetFlights", ctx).Return(flights, nil)

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestFlightService_List_CacheErrorFallsBackToRepository(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, mockCache, nil)
	ctx := context.Background()

	flights := sampleFlights()
	mockCache.On("GetFlights", ctx).Return(nil, errors.New("redis unavailable"))
	mockRepo.On("List", ctx).Return(flights, nil)
	mockCache.On("SetFlights", ctx, flights).Return(errors.New("redis unavailable"))

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil, nil)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(nil, errors.New("database error"))

	result, err := service.List(ctx)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestFlightService_GetByID(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, mockCache, nil)
	ctx := context.Background()

	flight := sampleFlights()[0]
	mockCache.On("GetFlight", ctx, int64(4)).Return(nil, nil)
	mockRepo.On("GetByID", ctx, int64(4)).Return(&flight, nil)
	mockCache.On("SetFlight", ctx, &flight).Return(nil)

	result, err := service.GetByID(ctx, 4)

	require.NoError(t, err)
	assert.Equal(t, "SU10", result.FlightNumber)
	mockCache.AssertExpectations(t)
}

func TestFlightService_GetByID_NotFound(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(999)).Return(nil, domain.ErrFlightNotFound)

	result, err := service.GetByID(ctx, 999)

	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	assert.Nil(t, result)
}

func TestFlightService_Catalog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	catalog := store.Catalog()

	require.NoError(t, catalog.CreateTicketType(ctx, &domain.TicketType{Name: "Business", PriceMultiplier: 2.5, BaggageAllowanceKg: 30}))
	require.NoError(t, catalog.CreateTicketType(ctx, &domain.TicketType{Name: "Economy", PriceMultiplier: 1.0}))

	for _, spec := range []struct {
		name     string
		category domain.AddonCategory
		price    int64
		md       *domain.AddonMetadata
	}{
		{"Window seat", domain.AddonCategorySeat, 1500, domain.SeatAddonMetadata("window", false)},
		{"Extra bag 23kg", domain.AddonCategoryBaggage, 3000, domain.BaggageAddonMetadata(23)},
		{"Extra bag 10kg", domain.AddonCategoryBaggage, 2000, domain.BaggageAddonMetadata(10)},
	} {
		addon, err := domain.NewAddonOption(spec.name, spec.category, spec.price, spec.md)
		require.NoError(t, err)
		require.NoError(t, catalog.CreateAddon(ctx, &addon))
	}

	service := NewFlightService(store.Flights(), catalog, nil, nil)

	types, err := service.ListTicketTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "Economy", types[0].Name)
	assert.Equal(t, domain.DefaultBaggageAllowanceKg, types[0].BaggageAllowanceKg)

	all, err := service.ListAddons(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Extra bag 10kg", all[0].Name)
	assert.Equal(t, "Extra bag 23kg", all[1].Name)
	assert.Equal(t, "Window seat", all[2].Name)

	bags, err := service.ListAddons(ctx, domain.AddonCategoryBaggage)
	require.NoError(t, err)
	assert.Len(t, bags, 2)

	_, err = service.ListAddons(ctx, "pets")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
