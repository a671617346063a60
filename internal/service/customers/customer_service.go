package customers

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type CustomerUseCase interface {
	List(ctx context.Context) ([]*domain.Customer, error)
	GetByID(ctx context.Context, id int) (*domain.Customer, error)
	Add(ctx context.Context, input AddCustomerInput) (*domain.Customer, error)
	Remove(ctx context.Context, id int) error
}

type AddCustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CustomerService struct {
	sys  *domain.FlightBookingSystem
	repo repository.SystemRepository
}

func NewCustomerService(sys *domain.FlightBookingSystem, repo repository.SystemRepository) *CustomerService {
	return &CustomerService{sys: sys, repo: repo}
}

func (s *CustomerService) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.sys.Customers(), nil
}

func (s *CustomerService) GetByID(ctx context.Context, id int) (*domain.Customer, error) {
	return s.sys.CustomerByID(id, false)
}

func (s *CustomerService) Add(ctx context.Context, input AddCustomerInput) (*domain.Customer, error) {
	c, err := domain.NewCustomer(s.sys.NextCustomerID(), input.Name, input.Phone, input.Email)
	if err != nil {
		return nil, err
	}
	if err := s.sys.AddCustomer(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) Remove(ctx context.Context, id int) error {
	if err := s.sys.RemoveCustomerByID(id); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *CustomerService) save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, s.sys); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

var _ CustomerUseCase = (*CustomerService)(nil)
