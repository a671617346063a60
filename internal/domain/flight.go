package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type FlightClass string

const (
	FirstClass    FlightClass = "FIRST_CLASS"
	BusinessClass FlightClass = "BUSINESS_CLASS"
	EconomyClass  FlightClass = "ECONOMY_CLASS"
)

var classMultipliers = map[FlightClass]float64{
	FirstClass:    3.0,
	BusinessClass: 1.8,
	EconomyClass:  1.0,
}

// ParseFlightClass converts a case-insensitive class name into a FlightClass.
func ParseFlightClass(s string) (FlightClass, error) {
	c := FlightClass(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown flight class %q", ErrInvalidInput, s)
	}
	return c, nil
}

func (c FlightClass) Valid() bool {
	_, ok := classMultipliers[c]
	return ok
}

// Multiplier returns the fixed per-class price multiplier.
func (c FlightClass) Multiplier() float64 {
	return classMultipliers[c]
}

// Dynamic pricing constants: a markup applies only inside the last
// markupWindowDays before departure, growing by markupStepPerDay for every day
// closer to the flight, plus an occupancy component.
const (
	markupWindowDays = 15
	markupStepPerDay = 0.1
	occupancyMarkup  = 0.1
)

// Flight is a scheduled flight with a bounded passenger set. The departure
// date carries no time component; it is always truncated to midnight UTC.
type Flight struct {
	ID            int
	Number        string
	Origin        string
	Destination   string
	DepartureDate time.Time
	Capacity      int
	BasePrice     float64

	deleted    bool
	passengers map[int]*Customer
}

func NewFlight(id int, number, origin, destination string, departure time.Time, capacity int, basePrice float64) (*Flight, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: flight id must be positive", ErrInvalidInput)
	}
	if number == "" {
		return nil, fmt.Errorf("%w: flight number is required", ErrInvalidInput)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	}
	if basePrice < 0 {
		return nil, fmt.Errorf("%w: base price cannot be negative", ErrInvalidInput)
	}
	return &Flight{
		ID:            id,
		Number:        number,
		Origin:        origin,
		Destination:   destination,
		DepartureDate: dateOnly(departure),
		Capacity:      capacity,
		BasePrice:     basePrice,
		passengers:    make(map[int]*Customer),
	}, nil
}

func (f *Flight) Deleted() bool {
	return f.deleted
}

func (f *Flight) markDeleted(deleted bool) {
	f.deleted = deleted
}

// Passengers returns the currently booked customers in ascending id order.
func (f *Flight) Passengers() []*Customer {
	out := make([]*Customer, 0, len(f.passengers))
	for _, c := range f.passengers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Flight) addPassenger(c *Customer) {
	f.passengers[c.ID] = c
}

func (f *Flight) removePassenger(c *Customer) {
	delete(f.passengers, c.ID)
}

// Carrying reports whether the customer currently holds a passenger slot.
func (f *Flight) Carrying(c *Customer) bool {
	_, ok := f.passengers[c.ID]
	return ok
}

func (f *Flight) BookedSeats() int {
	return len(f.passengers)
}

func (f *Flight) AvailableSeats() int {
	return f.Capacity - len(f.passengers)
}

func (f *Flight) FullyBooked() bool {
	return len(f.passengers) >= f.Capacity
}

// Departed reports whether the departure date is strictly before today.
func (f *Flight) Departed(today time.Time) bool {
	return f.DepartureDate.Before(dateOnly(today))
}

// ClassPrice is the static price for a class: base price times the class
// multiplier.
func (f *Flight) ClassPrice(class FlightClass) float64 {
	return f.BasePrice * class.Multiplier()
}

// DynamicPrice recomputes the fare for a class from current state; nothing is
// cached. Outside the markup window, and for departed flights, it equals the
// static class price. Inside the window three factors apply on top of the
// static price: time to departure, the class multiplier a second time, and
// occupancy.
func (f *Flight) DynamicPrice(class FlightClass, today time.Time) float64 {
	static := f.ClassPrice(class)
	if f.Departed(today) {
		return static
	}
	daysLeft := daysUntil(today, f.DepartureDate)
	if daysLeft > markupWindowDays {
		return static
	}
	timeFactor := 1.0 + markupStepPerDay*float64(markupWindowDays-daysLeft)
	classFactor := class.Multiplier()
	occupancyFactor := 1.0 + occupancyMarkup*(float64(f.BookedSeats())/float64(f.Capacity))
	return static * timeFactor * classFactor * occupancyFactor
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysUntil(today, departure time.Time) int {
	return int(dateOnly(departure).Sub(dateOnly(today)).Hours() / 24)
}
