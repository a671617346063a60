package domain

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// FlightBookingSystem is the aggregate store. It owns every customer, flight
// and booking, assigns customer and booking ids, and enforces the
// cross-entity invariants: no duplicate ids, no duplicate active flight per
// (number, departure date), no booking against an absent customer or flight,
// and never more passengers than a flight's capacity.
//
// Entities are never physically removed; removal flips a soft-delete flag so
// existing bookings keep resolving their references. All state mutation is
// serialized behind a single mutex, which also makes id assignment safe for
// concurrent callers.
type FlightBookingSystem struct {
	mu sync.Mutex

	systemDate time.Time
	fees       FeePolicy

	customers map[int]*Customer
	flights   map[int]*Flight
	bookings  map[int]*Booking

	lastCustomerID int
	lastBookingID  int
}

type SystemOption func(*FlightBookingSystem)

// WithSystemDate fixes the reference date used for fee and completion checks.
func WithSystemDate(d time.Time) SystemOption {
	return func(s *FlightBookingSystem) {
		s.systemDate = dateOnly(d)
	}
}

// WithFeePolicy overrides the default cancellation/rebook rates.
func WithFeePolicy(p FeePolicy) SystemOption {
	return func(s *FlightBookingSystem) {
		s.fees = p
	}
}

func NewFlightBookingSystem(opts ...SystemOption) *FlightBookingSystem {
	s := &FlightBookingSystem{
		systemDate: dateOnly(time.Now()),
		fees:       DefaultFeePolicy(),
		customers:  make(map[int]*Customer),
		flights:    make(map[int]*Flight),
		bookings:   make(map[int]*Booking),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightBookingSystem) SystemDate() time.Time {
	return s.systemDate
}

func (s *FlightBookingSystem) Fees() FeePolicy {
	return s.fees
}

// NextCustomerID hands out the next customer identifier. Ids are never
// reused.
func (s *FlightBookingSystem) NextCustomerID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCustomerID++
	return s.lastCustomerID
}

// NextFlightID suggests an id for a new flight: one past the highest id ever
// stored, including soft-deleted flights. Flight ids are assigned by the
// caller before AddFlight.
func (s *FlightBookingSystem) NextFlightID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for id := range s.flights {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// AddFlight stores a flight. It fails on a duplicate id and when another
// active flight already has the same number and departure date.
func (s *FlightBookingSystem) AddFlight(f *Flight) error {
	if f == nil {
		return fmt.Errorf("%w: nil flight", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[f.ID]; ok {
		return fmt.Errorf("%w: flight id %d", ErrDuplicate, f.ID)
	}
	for _, existing := range s.flights {
		if existing.Deleted() {
			continue
		}
		if existing.Number == f.Number && existing.DepartureDate.Equal(f.DepartureDate) {
			return fmt.Errorf("%w: flight %s already departs on %s", ErrDuplicate, f.Number, f.DepartureDate.Format("2006-01-02"))
		}
	}
	s.flights[f.ID] = f
	return nil
}

// AddCustomer stores a customer. It fails on a duplicate id.
func (s *FlightBookingSystem) AddCustomer(c *Customer) error {
	if c == nil {
		return fmt.Errorf("%w: nil customer", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[c.ID]; ok {
		return fmt.Errorf("%w: customer id %d", ErrDuplicate, c.ID)
	}
	s.customers[c.ID] = c
	if c.ID > s.lastCustomerID {
		s.lastCustomerID = c.ID
	}
	return nil
}

// AddBooking accepts a booking whose customer and flight are already present
// in the store (soft-deleted entities count as present), enforces the flight
// capacity, assigns a fresh globally unique booking id, and links the booking
// into the customer's list and the flight's passenger set.
func (s *FlightBookingSystem) AddBooking(b *Booking) error {
	if b == nil {
		return fmt.Errorf("%w: nil booking", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	customer := b.Customer()
	flight := b.Flight()
	if _, ok := s.customers[customer.ID]; !ok {
		return fmt.Errorf("%w: customer %d", ErrNotFound, customer.ID)
	}
	if _, ok := s.flights[flight.ID]; !ok {
		return fmt.Errorf("%w: flight %d", ErrNotFound, flight.ID)
	}
	if !flight.Carrying(customer) && flight.FullyBooked() {
		return fmt.Errorf("%w: flight %d has %d of %d seats booked", ErrFlightFull, flight.ID, flight.BookedSeats(), flight.Capacity)
	}

	s.lastBookingID++
	b.ID = s.lastBookingID
	s.bookings[b.ID] = b
	customer.addBooking(b)
	flight.addPassenger(customer)
	return nil
}

// FlightByID looks up a flight. Soft-deleted flights are invisible unless
// includeDeleted is set.
func (s *FlightBookingSystem) FlightByID(id int, includeDeleted bool) (*Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok || (f.Deleted() && !includeDeleted) {
		return nil, fmt.Errorf("%w: no active flight with id %d", ErrNotFound, id)
	}
	return f, nil
}

// CustomerByID looks up a customer. Soft-deleted customers are invisible
// unless includeDeleted is set.
func (s *FlightBookingSystem) CustomerByID(id int, includeDeleted bool) (*Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok || (c.Deleted() && !includeDeleted) {
		return nil, fmt.Errorf("%w: no active customer with id %d", ErrNotFound, id)
	}
	return c, nil
}

// BookingByID looks up an active booking.
func (s *FlightBookingSystem) BookingByID(id int) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.Deleted() {
		return nil, fmt.Errorf("%w: no active booking with id %d", ErrNotFound, id)
	}
	return b, nil
}

// BookingByCustomerAndFlight scans the customer's booking list for one
// against the given flight. Absence is expected, so it returns nil rather
// than an error.
func (s *FlightBookingSystem) BookingByCustomerAndFlight(c *Customer, f *Flight) *Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range c.bookings {
		if b.Flight() == f {
			return b
		}
	}
	return nil
}

// RemoveFlightByID soft-deletes a flight. Bookings against it are untouched.
func (s *FlightBookingSystem) RemoveFlightByID(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok {
		return fmt.Errorf("%w: no flight with id %d", ErrNotFound, id)
	}
	f.markDeleted(true)
	return nil
}

// RemoveCustomerByID soft-deletes a customer. Bookings made by the customer
// are untouched.
func (s *FlightBookingSystem) RemoveCustomerByID(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return fmt.Errorf("%w: no customer with id %d", ErrNotFound, id)
	}
	c.markDeleted(true)
	return nil
}

// RemoveBookingByID soft-deletes a booking, hiding it from listings.
func (s *FlightBookingSystem) RemoveBookingByID(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("%w: no booking with id %d", ErrNotFound, id)
	}
	b.markDeleted(true)
	return nil
}

// CancelBooking cancels an active booking against the system date using the
// configured fee policy.
func (s *FlightBookingSystem) CancelBooking(id int) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.Deleted() {
		return nil, fmt.Errorf("%w: no active booking with id %d", ErrNotFound, id)
	}
	if err := b.Cancel(s.systemDate, s.fees); err != nil {
		return nil, err
	}
	return b, nil
}

// RebookBooking applies the rebook fee to an active booking.
func (s *FlightBookingSystem) RebookBooking(id int) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.Deleted() {
		return nil, fmt.Errorf("%w: no active booking with id %d", ErrNotFound, id)
	}
	if err := b.Rebook(s.systemDate, s.fees); err != nil {
		return nil, err
	}
	return b, nil
}

// Flights lists active flights in ascending id order.
func (s *FlightBookingSystem) Flights() []*Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Flight, 0, len(s.flights))
	for _, id := range sortedKeys(s.flights) {
		if f := s.flights[id]; !f.Deleted() {
			out = append(out, f)
		}
	}
	return out
}

// Customers lists active customers in ascending id order.
func (s *FlightBookingSystem) Customers() []*Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Customer, 0, len(s.customers))
	for _, id := range sortedKeys(s.customers) {
		if c := s.customers[id]; !c.Deleted() {
			out = append(out, c)
		}
	}
	return out
}

// Bookings lists active bookings in ascending id order.
func (s *FlightBookingSystem) Bookings() []*Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Booking, 0, len(s.bookings))
	for _, id := range sortedKeys(s.bookings) {
		if b := s.bookings[id]; !b.Deleted() {
			out = append(out, b)
		}
	}
	return out
}

// AllFlights lists every flight including tombstones, in ascending id order.
// Persistence uses this path so soft-deleted records survive a round-trip.
func (s *FlightBookingSystem) AllFlights() []*Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Flight, 0, len(s.flights))
	for _, id := range sortedKeys(s.flights) {
		out = append(out, s.flights[id])
	}
	return out
}

// AllCustomers lists every customer including tombstones, in ascending id
// order.
func (s *FlightBookingSystem) AllCustomers() []*Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Customer, 0, len(s.customers))
	for _, id := range sortedKeys(s.customers) {
		out = append(out, s.customers[id])
	}
	return out
}

// AllBookings lists every booking including tombstones, in ascending id
// order.
func (s *FlightBookingSystem) AllBookings() []*Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Booking, 0, len(s.bookings))
	for _, id := range sortedKeys(s.bookings) {
		out = append(out, s.bookings[id])
	}
	return out
}

// FlightExists reports whether an active flight with the id is stored.
func (s *FlightBookingSystem) FlightExists(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	return ok && !f.Deleted()
}

// CustomerExists reports whether an active customer with the id is stored.
func (s *FlightBookingSystem) CustomerExists(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	return ok && !c.Deleted()
}

// RestoreBookingState rewrites the stored lifecycle fields of a booking.
// Only the persistence loader calls this, after replaying AddBooking; it
// bypasses fee computation and the completion check on purpose.
func (s *FlightBookingSystem) RestoreBookingState(id int, ref string, fee float64, canceled, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("%w: no booking with id %d", ErrNotFound, id)
	}
	if ref != "" {
		b.Ref = ref
	}
	b.cancellationFee = fee
	b.canceled = canceled
	b.deleted = deleted
	if canceled {
		b.Flight().removePassenger(b.Customer())
	}
	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
