package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/repository"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// CustomerService coordinates the customer directory.
type CustomerService struct {
	customers repository.CustomerRepository
}

// NewCustomerService builds the service.
func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// CustomerInput describes create/update payloads.
type CustomerInput struct {
	Name    string
	Mobile  string
	Email   string
	Address string
	Company string
	GST     string
}

// Create validates and stores a new customer.
func (s *CustomerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	mobile := strings.TrimSpace(input.Mobile)
	if name == "" || mobile == "" {
		return nil, apperrors.NewValidationError("name and mobile are required", nil)
	}
	customer := &domain.Customer{
		Name:    name,
		Mobile:  mobile,
		Email:   strings.TrimSpace(input.Email),
		Address: strings.TrimSpace(input.Address),
		Company: strings.TrimSpace(input.Company),
		GST:     strings.TrimSpace(input.GST),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// Update modifies an existing customer record.
func (s *CustomerService) Update(ctx context.Context, id string, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		customer.Name = name
	}
	if mobile := strings.TrimSpace(input.Mobile); mobile != "" {
		customer.Mobile = mobile
	}
	customer.Email = strings.TrimSpace(input.Email)
	customer.Address = strings.TrimSpace(input.Address)
	customer.Company = strings.TrimSpace(input.Company)
	customer.GST = strings.TrimSpace(input.GST)

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// Get fetches a customer by id.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"cust_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// Search matches customers by name or mobile prefix; an empty term lists all.
func (s *CustomerService) Search(ctx context.Context, term string, limit, offset int) ([]domain.Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.customers.List(ctx, limit, offset)
	}
	return s.customers.Search(ctx, term, limit)
}

// Delete soft-deletes a customer.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.customers.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("customer", map[string]any{"cust_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
