package booking

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSystemRepository struct {
	mock.Mock
}

func (m *MockSystemRepository) Load(ctx context.Context, opts ...domain.SystemOption) (*domain.FlightBookingSystem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightBookingSystem), args.Error(1)
}

func (m *MockSystemRepository) Save(ctx context.Context, sys *domain.FlightBookingSystem) error {
	args := m.Called(ctx, sys)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) MarkNotified(ctx context.Context, bookingID int) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seededSystem(t *testing.T) *domain.FlightBookingSystem {
	t.Helper()
	sys := domain.NewFlightBookingSystem(domain.WithSystemDate(date(2024, 6, 10)))

	f, err := domain.NewFlight(1, "LH100", "FRA", "JFK", date(2024, 6, 20), 2, 100)
	require.NoError(t, err)
	require.NoError(t, sys.AddFlight(f))

	c, err := domain.NewCustomer(sys.NextCustomerID(), "alice", "+100", "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, sys.AddCustomer(c))

	return sys
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	sys := seededSystem(t)
	mockRepo := &MockSystemRepository{}
	mockProducer := &MockProducer{}
	service := NewBookingService(sys, mockRepo, mockProducer, "booking-events")

	ctx := context.Background()
	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()
	mockRepo.On("Save", ctx, sys).Return(nil).Once()

	b, err := service.CreateBooking(ctx, CreateBookingInput{
		CustomerID: 1,
		FlightID:   1,
		Class:      "FIRST_CLASS",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, domain.FirstClass, b.Class)
	assert.NotEmpty(t, b.Ref)

	f, err := sys.FlightByID(1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.BookedSeats())

	mockProducer.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	sys := seededSystem(t)
	service := NewBookingService(sys, nil, nil, "")
	ctx := context.Background()

	testCases := []struct {
		name     string
		input    CreateBookingInput
		expected error
	}{
		{
			name:     "unknown class",
			input:    CreateBookingInput{CustomerID: 1, FlightID: 1, Class: "COACH"},
			expected: domain.ErrInvalidInput,
		},
		{
			name:     "unknown customer",
			input:    CreateBookingInput{CustomerID: 42, FlightID: 1, Class: "ECONOMY_CLASS"},
			expected: domain.ErrNotFound,
		},
		{
			name:     "unknown flight",
			input:    CreateBookingInput{CustomerID: 1, FlightID: 42, Class: "ECONOMY_CLASS"},
			expected: domain.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateBooking(ctx, tc.input)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestBookingService_CreateBooking_FlightFull(t *testing.T) {
	sys := seededSystem(t)
	service := NewBookingService(sys, nil, nil, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		c, err := domain.NewCustomer(sys.NextCustomerID(), "extra", "+100", "extra@example.com")
		require.NoError(t, err)
		require.NoError(t, sys.AddCustomer(c))
		_, err = service.CreateBooking(ctx, CreateBookingInput{CustomerID: c.ID, FlightID: 1, Class: "ECONOMY_CLASS"})
		require.NoError(t, err)
	}

	_, err := service.CreateBooking(ctx, CreateBookingInput{CustomerID: 1, FlightID: 1, Class: "ECONOMY_CLASS"})
	assert.ErrorIs(t, err, domain.ErrFlightFull)
}

func TestBookingService_CancelBooking(t *testing.T) {
	sys := seededSystem(t)
	mockRepo := &MockSystemRepository{}
	mockProducer := &MockProducer{}
	service := NewBookingService(sys, mockRepo, mockProducer, "booking-events")
	ctx := context.Background()

	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Twice()
	mockRepo.On("Save", ctx, sys).Return(nil).Twice()

	b, err := service.CreateBooking(ctx, CreateBookingInput{CustomerID: 1, FlightID: 1, Class: "ECONOMY_CLASS"})
	require.NoError(t, err)

	canceled, err := service.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, canceled.Canceled())
	assert.InDelta(t, 5.0, canceled.CancellationFee(), 1e-9)

	// Canceled bookings disappear from listings and free the seat.
	bookings, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	f, err := sys.FlightByID(1, false)
	require.NoError(t, err)
	assert.Equal(t, 0, f.BookedSeats())

	mockProducer.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestBookingService_CancelBooking_Completed(t *testing.T) {
	sys := domain.NewFlightBookingSystem(domain.WithSystemDate(date(2024, 6, 10)))
	f, err := domain.NewFlight(1, "LH100", "FRA", "JFK", date(2024, 6, 1), 10, 100)
	require.NoError(t, err)
	require.NoError(t, sys.AddFlight(f))
	c, err := domain.NewCustomer(sys.NextCustomerID(), "alice", "+100", "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, sys.AddCustomer(c))
	b, err := domain.NewBooking(c, f, date(2024, 5, 20), domain.EconomyClass)
	require.NoError(t, err)
	require.NoError(t, sys.AddBooking(b))

	service := NewBookingService(sys, nil, nil, "")
	_, err = service.CancelBooking(context.Background(), b.ID)
	assert.ErrorIs(t, err, domain.ErrBookingCompleted)
}

func TestBookingService_RebookBooking(t *testing.T) {
	sys := seededSystem(t)
	mockRepo := &MockSystemRepository{}
	mockProducer := &MockProducer{}
	service := NewBookingService(sys, mockRepo, mockProducer, "booking-events")
	ctx := context.Background()

	mockProducer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Twice()
	mockRepo.On("Save", ctx, sys).Return(nil).Twice()

	b, err := service.CreateBooking(ctx, CreateBookingInput{CustomerID: 1, FlightID: 1, Class: "BUSINESS_CLASS"})
	require.NoError(t, err)

	rebooked, err := service.RebookBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, rebooked.CancellationFee(), 1e-9)
	assert.Equal(t, domain.BusinessClass, rebooked.Class)

	mockProducer.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestBookingService_SweepCompleted(t *testing.T) {
	sys := domain.NewFlightBookingSystem(domain.WithSystemDate(date(2024, 6, 10)))
	departed, err := domain.NewFlight(1, "LH100", "FRA", "JFK", date(2024, 6, 1), 10, 100)
	require.NoError(t, err)
	require.NoError(t, sys.AddFlight(departed))
	upcoming, err := domain.NewFlight(2, "LH200", "FRA", "LHR", date(2024, 6, 20), 10, 100)
	require.NoError(t, err)
	require.NoError(t, sys.AddFlight(upcoming))
	c, err := domain.NewCustomer(sys.NextCustomerID(), "alice", "+100", "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, sys.AddCustomer(c))

	b1, err := domain.NewBooking(c, departed, date(2024, 5, 20), domain.EconomyClass)
	require.NoError(t, err)
	require.NoError(t, sys.AddBooking(b1))
	b2, err := domain.NewBooking(c, upcoming, date(2024, 6, 5), domain.EconomyClass)
	require.NoError(t, err)
	require.NoError(t, sys.AddBooking(b2))

	mockProducer := &MockProducer{}
	mockNotifier := &MockNotifier{}
	service := NewBookingService(sys, nil, mockProducer, "booking-events", WithNotifier(mockNotifier))
	ctx := context.Background()

	mockNotifier.On("MarkNotified", ctx, b1.ID).Return(true, nil).Once()
	mockProducer.On("Publish", ctx, "booking-events", b1.Ref, mock.Anything).Return(nil).Once()

	completed, err := service.SweepCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, b1.ID, completed[0].ID)

	// A second sweep is deduped by the notifier.
	mockNotifier.On("MarkNotified", ctx, b1.ID).Return(false, nil).Once()
	completed, err = service.SweepCompleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, completed)

	mockNotifier.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}
