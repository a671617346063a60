package domain

import "time"

// FlightSummary is a read-only snapshot of a flight with its per-class
// dynamic fares, built for listings. Fares are computed at snapshot time;
// the flight itself never stores them.
type FlightSummary struct {
	ID            int       `json:"id"`
	Number        string    `json:"number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
	Capacity      int       `json:"capacity"`
	BookedSeats   int       `json:"booked_seats"`
	BasePrice     float64   `json:"base_price"`
	FirstClass    float64   `json:"first_class_fare"`
	BusinessClass float64   `json:"business_class_fare"`
	EconomyClass  float64   `json:"economy_class_fare"`
}

func SummarizeFlight(f *Flight, today time.Time) FlightSummary {
	return FlightSummary{
		ID:            f.ID,
		Number:        f.Number,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureDate: f.DepartureDate,
		Capacity:      f.Capacity,
		BookedSeats:   f.BookedSeats(),
		BasePrice:     f.BasePrice,
		FirstClass:    f.DynamicPrice(FirstClass, today),
		BusinessClass: f.DynamicPrice(BusinessClass, today),
		EconomyClass:  f.DynamicPrice(EconomyClass, today),
	}
}
