package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.FlightSummary, error)
	Upcoming(ctx context.Context) ([]domain.FlightSummary, error)
	GetByID(ctx context.Context, id int) (*domain.Flight, error)
	Fares(ctx context.Context, id int) (domain.FlightSummary, error)
	Add(ctx context.Context, input AddFlightInput) (*domain.Flight, error)
	Remove(ctx context.Context, id int) error
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.FlightSummary, error)
	SetFlights(ctx context.Context, flights []domain.FlightSummary) error
	InvalidateFlights(ctx context.Context) error
}

type AddFlightInput struct {
	Number        string    `json:"number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departure_date"`
	Capacity      int       `json:"capacity"`
	BasePrice     float64   `json:"base_price"`
}

type FlightService struct {
	sys   *domain.FlightBookingSystem
	repo  repository.SystemRepository
	cache Cache
}

func NewFlightService(sys *domain.FlightBookingSystem, repo repository.SystemRepository, cache Cache) *FlightService {
	return &FlightService{sys: sys, repo: repo, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.FlightSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	today := s.sys.SystemDate()
	flights := s.sys.Flights()
	out := make([]domain.FlightSummary, 0, len(flights))
	for _, f := range flights {
		out = append(out, domain.SummarizeFlight(f, today))
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, out)
	}
	return out, nil
}

func (s *FlightService) Upcoming(ctx context.Context) ([]domain.FlightSummary, error) {
	today := s.sys.SystemDate()
	var out []domain.FlightSummary
	for _, f := range s.sys.Flights() {
		if !f.Departed(today) {
			out = append(out, domain.SummarizeFlight(f, today))
		}
	}
	return out, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int) (*domain.Flight, error) {
	return s.sys.FlightByID(id, false)
}

func (s *FlightService) Fares(ctx context.Context, id int) (domain.FlightSummary, error) {
	f, err := s.sys.FlightByID(id, false)
	if err != nil {
		return domain.FlightSummary{}, err
	}
	return domain.SummarizeFlight(f, s.sys.SystemDate()), nil
}

func (s *FlightService) Add(ctx context.Context, input AddFlightInput) (*domain.Flight, error) {
	f, err := domain.NewFlight(s.sys.NextFlightID(), input.Number, input.Origin, input.Destination, input.DepartureDate, input.Capacity, input.BasePrice)
	if err != nil {
		return nil, err
	}
	if err := s.sys.AddFlight(f); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FlightService) Remove(ctx context.Context, id int) error {
	if err := s.sys.RemoveFlightByID(id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return s.save(ctx)
}

// save snapshots the aggregate. The in-memory mutation stays applied even
// when the snapshot fails.
func (s *FlightService) save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, s.sys); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
