package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type BookingUseCase interface {
	List(ctx context.Context) ([]*domain.Booking, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int) (*domain.Booking, error)
	RebookBooking(ctx context.Context, id int) (*domain.Booking, error)
	SweepCompleted(ctx context.Context) ([]*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Notifier dedupes completion notifications across sweeps.
type Notifier interface {
	MarkNotified(ctx context.Context, bookingID int) (bool, error)
}

type CreateBookingInput struct {
	CustomerID  int       `json:"customer_id"`
	FlightID    int       `json:"flight_id"`
	BookingDate time.Time `json:"booking_date"`
	Class       string    `json:"class"`
}

type BookingService struct {
	sys                *domain.FlightBookingSystem
	repo               repository.SystemRepository
	producer           Producer
	notifier           Notifier
	eventsTopic        string
	notificationsTopic string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithNotifier(n Notifier) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = n
	}
}

func NewBookingService(
	sys *domain.FlightBookingSystem,
	repo repository.SystemRepository,
	producer Producer,
	eventsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		sys:         sys,
		repo:        repo,
		producer:    producer,
		eventsTopic: eventsTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) List(ctx context.Context) ([]*domain.Booking, error) {
	return s.sys.Bookings(), nil
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	class, err := domain.ParseFlightClass(input.Class)
	if err != nil {
		return nil, err
	}

	customer, err := s.sys.CustomerByID(input.CustomerID, false)
	if err != nil {
		return nil, err
	}
	flight, err := s.sys.FlightByID(input.FlightID, false)
	if err != nil {
		return nil, err
	}

	bookingDate := input.BookingDate
	if bookingDate.IsZero() {
		bookingDate = s.sys.SystemDate()
	}

	b, err := domain.NewBooking(customer, flight, bookingDate, class)
	if err != nil {
		return nil, err
	}
	if err := s.sys.AddBooking(b); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "booking_created", b); err != nil {
		fmt.Printf("WARNING: failed to publish booking_created event for booking %s: %v\n", b.Ref, err)
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// CancelBooking cancels the booking and then hides it from listings, the way
// the cancel operation has always behaved end to end.
func (s *BookingService) CancelBooking(ctx context.Context, id int) (*domain.Booking, error) {
	b, err := s.sys.CancelBooking(id)
	if err != nil {
		return nil, err
	}
	if err := s.sys.RemoveBookingByID(id); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "booking_cancelled", b); err != nil {
		fmt.Printf("WARNING: failed to publish booking_cancelled event for booking %s: %v\n", b.Ref, err)
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) RebookBooking(ctx context.Context, id int) (*domain.Booking, error) {
	b, err := s.sys.RebookBooking(id)
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "booking_rebooked", b); err != nil {
		fmt.Printf("WARNING: failed to publish booking_rebooked event for booking %s: %v\n", b.Ref, err)
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// SweepCompleted publishes one booking_completed notification for every
// active booking whose flight has departed. Completion stays derived; nothing
// is written to the booking itself, and the notifier keeps repeat sweeps from
// notifying twice.
func (s *BookingService) SweepCompleted(ctx context.Context) ([]*domain.Booking, error) {
	today := s.sys.SystemDate()
	var completed []*domain.Booking
	for _, b := range s.sys.Bookings() {
		if b.Canceled() || !b.Completed(today) {
			continue
		}
		if s.notifier != nil {
			fresh, err := s.notifier.MarkNotified(ctx, b.ID)
			if err != nil {
				return completed, err
			}
			if !fresh {
				continue
			}
		}
		if err := s.publish(ctx, "booking_completed", b); err != nil {
			fmt.Printf("WARNING: failed to publish booking_completed event for booking %s: %v\n", b.Ref, err)
		}
		completed = append(completed, b)
	}
	return completed, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}
	flight := b.Flight()
	customer := b.Customer()
	event := kafka.BookingEvent{
		Type:          eventType,
		Ref:           b.Ref,
		BookingID:     b.ID,
		CustomerID:    customer.ID,
		CustomerEmail: customer.Email,
		FlightID:      flight.ID,
		FlightNumber:  flight.Number,
		Class:         string(b.Class),
		Fee:           b.CancellationFee(),
		DepartureDate: flight.DepartureDate,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, b.Ref, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, b.Ref, event)
	}
	return nil
}

func (s *BookingService) save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, s.sys); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
