package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/repository"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// AntivirusService tracks customer license renewals.
type AntivirusService struct {
	licenses  repository.AntivirusRepository
	customers repository.CustomerRepository
	now       func() time.Time
}

// NewAntivirusService builds the service.
func NewAntivirusService(licenses repository.AntivirusRepository, customers repository.CustomerRepository) *AntivirusService {
	return &AntivirusService{licenses: licenses, customers: customers, now: time.Now}
}

// LicenseInput describes create/update payloads.
type LicenseInput struct {
	CustomerID string
	Product    string
	LicenseKey string
	ExpiryDate time.Time
}

// Create validates and stores a license.
func (s *AntivirusService) Create(ctx context.Context, input LicenseInput) (*domain.AntivirusLicense, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	license := &domain.AntivirusLicense{
		CustomerID: input.CustomerID,
		Product:    strings.TrimSpace(input.Product),
		LicenseKey: strings.TrimSpace(input.LicenseKey),
		ExpiryDate: input.ExpiryDate,
	}
	if err := s.licenses.Create(ctx, license); err != nil {
		return nil, apperrors.MapError(err)
	}
	return license, nil
}

// Update replaces license fields.
func (s *AntivirusService) Update(ctx context.Context, id string, input LicenseInput) (*domain.AntivirusLicense, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	license, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	license.CustomerID = input.CustomerID
	license.Product = strings.TrimSpace(input.Product)
	license.LicenseKey = strings.TrimSpace(input.LicenseKey)
	license.ExpiryDate = input.ExpiryDate

	if err := s.licenses.Update(ctx, license); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("license", map[string]any{"license_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return license, nil
}

// Get fetches one license.
func (s *AntivirusService) Get(ctx context.Context, id string) (*domain.AntivirusLicense, error) {
	license, err := s.licenses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("license", map[string]any{"license_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return license, nil
}

// List returns all licenses, soonest expiry first.
func (s *AntivirusService) List(ctx context.Context) ([]domain.AntivirusLicense, error) {
	return s.licenses.List(ctx)
}

// ListExpiring returns licenses expiring within the given number of days.
func (s *AntivirusService) ListExpiring(ctx context.Context, withinDays int) ([]domain.AntivirusLicense, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	cutoff := s.now().AddDate(0, 0, withinDays)
	return s.licenses.ListExpiringBefore(ctx, cutoff)
}

// Delete soft-deletes a license.
func (s *AntivirusService) Delete(ctx context.Context, id string) error {
	if err := s.licenses.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("license", map[string]any{"license_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AntivirusService) validate(ctx context.Context, input LicenseInput) error {
	if strings.TrimSpace(input.Product) == "" || strings.TrimSpace(input.LicenseKey) == "" {
		return apperrors.NewValidationError("product and license key are required", nil)
	}
	if input.ExpiryDate.IsZero() {
		return apperrors.NewValidationError("expiry date is required", nil)
	}
	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("customer", map[string]any{"cust_id": input.CustomerID})
		}
		return apperrors.MapError(err)
	}
	return nil
}
