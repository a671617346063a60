package domain

import "fmt"

// Customer owns an ordered list of its bookings. Soft-deleted customers stay
// in the store so historical bookings keep resolving.
type Customer struct {
	ID    int
	Name  string
	Phone string
	Email string

	deleted  bool
	bookings []*Booking
}

func NewCustomer(id int, name, phone, email string) (*Customer, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: customer id must be positive", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	return &Customer{ID: id, Name: name, Phone: phone, Email: email}, nil
}

func (c *Customer) Deleted() bool {
	return c.deleted
}

func (c *Customer) markDeleted(deleted bool) {
	c.deleted = deleted
}

// Bookings returns the customer's bookings in the order they were made.
func (c *Customer) Bookings() []*Booking {
	out := make([]*Booking, len(c.bookings))
	copy(out, c.bookings)
	return out
}

func (c *Customer) addBooking(b *Booking) {
	c.bookings = append(c.bookings, b)
}
