package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking links one customer to one flight. The integer ID is assigned by the
// store when the booking is accepted; Ref is an opaque token used to correlate
// published events.
type Booking struct {
	ID          int
	Ref         string
	BookingDate time.Time
	Class       FlightClass

	customer        *Customer
	flight          *Flight
	cancellationFee float64
	canceled        bool
	deleted         bool
}

func NewBooking(customer *Customer, flight *Flight, bookingDate time.Time, class FlightClass) (*Booking, error) {
	if customer == nil {
		return nil, fmt.Errorf("%w: booking requires a customer", ErrInvalidInput)
	}
	if flight == nil {
		return nil, fmt.Errorf("%w: booking requires a flight", ErrInvalidInput)
	}
	if !class.Valid() {
		return nil, fmt.Errorf("%w: unknown flight class %q", ErrInvalidInput, class)
	}
	return &Booking{
		Ref:         uuid.NewString(),
		BookingDate: dateOnly(bookingDate),
		Class:       class,
		customer:    customer,
		flight:      flight,
	}, nil
}

func (b *Booking) Customer() *Customer {
	return b.customer
}

func (b *Booking) Flight() *Flight {
	return b.flight
}

// CancellationFee holds the last charge applied to the booking: the
// cancellation fee after Cancel, or the rebook fee after Rebook. Zero until
// either happens.
func (b *Booking) CancellationFee() float64 {
	return b.cancellationFee
}

func (b *Booking) Canceled() bool {
	return b.canceled
}

func (b *Booking) Deleted() bool {
	return b.deleted
}

func (b *Booking) markDeleted(deleted bool) {
	b.deleted = deleted
}

// Completed reports whether the flight's departure date has passed. There is
// no stored completed state; the clock advancing is the only transition.
func (b *Booking) Completed(today time.Time) bool {
	return dateOnly(today).After(b.flight.DepartureDate)
}

// Cancel frees the customer's passenger slot, records the cancellation fee
// and marks the booking canceled. It does not soft-delete the booking; that
// is the caller's decision.
func (b *Booking) Cancel(today time.Time, fees FeePolicy) error {
	if b.Completed(today) {
		return fmt.Errorf("%w: cannot cancel booking %d", ErrBookingCompleted, b.ID)
	}
	b.flight.removePassenger(b.customer)
	b.cancellationFee = fees.CancellationFee(b.flight)
	b.canceled = true
	return nil
}

// Rebook recomputes and records the rebook fee. Flight and class stay
// unchanged.
func (b *Booking) Rebook(today time.Time, fees FeePolicy) error {
	if b.Completed(today) {
		return fmt.Errorf("%w: cannot update booking %d", ErrBookingCompleted, b.ID)
	}
	b.cancellationFee = fees.RebookFee(b.flight)
	return nil
}

// ForCustomer reports whether the booking belongs to the given customer.
func (b *Booking) ForCustomer(c *Customer) bool {
	return b.customer == c
}
