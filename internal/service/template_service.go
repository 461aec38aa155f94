package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/repository"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// TemplateService manages the WhatsApp message template catalog.
type TemplateService struct {
	templates repository.TemplateRepository
	logger    *zap.Logger
}

// NewTemplateService builds the service.
func NewTemplateService(templates repository.TemplateRepository, logger *zap.Logger) *TemplateService {
	return &TemplateService{templates: templates, logger: logger}
}

// TemplateInput describes create/update payloads.
type TemplateInput struct {
	Title     string
	Subject   string
	Message   string
	Recipient domain.RecipientClass
	Status    domain.TicketStatus
	Active    bool
	Variables []string
}

// EnsureSeeded installs the default template set when the table is empty.
// Called once at startup; existing catalogs are left alone.
func (s *TemplateService) EnsureSeeded(ctx context.Context) error {
	count, err := s.templates.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, template := range domain.DefaultTemplates() {
		seeded := template
		if err := s.templates.Create(ctx, &seeded); err != nil {
			return err
		}
	}
	s.logger.Info("seeded default whatsapp templates")
	return nil
}

// Create validates and stores a template.
func (s *TemplateService) Create(ctx context.Context, input TemplateInput) (*domain.WhatsAppTemplate, error) {
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}
	template := &domain.WhatsAppTemplate{
		Title:     strings.TrimSpace(input.Title),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   input.Message,
		Recipient: input.Recipient,
		Status:    input.Status,
		Active:    input.Active,
		Variables: input.Variables,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// Update replaces a template's fields.
func (s *TemplateService) Update(ctx context.Context, id string, input TemplateInput) (*domain.WhatsAppTemplate, error) {
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}
	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	template.Title = strings.TrimSpace(input.Title)
	template.Subject = strings.TrimSpace(input.Subject)
	template.Message = input.Message
	template.Recipient = input.Recipient
	template.Status = input.Status
	template.Active = input.Active
	template.Variables = input.Variables

	if err := s.templates.Update(ctx, template); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// Get fetches one template.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.WhatsAppTemplate, error) {
	template, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// List returns the whole catalog grouped by status.
func (s *TemplateService) List(ctx context.Context) ([]domain.WhatsAppTemplate, error) {
	return s.templates.List(ctx)
}

// Delete removes a template permanently.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.templates.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func validateTemplateInput(input TemplateInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" {
		return apperrors.NewValidationError("title and message are required", nil)
	}
	if !domain.IsRegisteredStatus(input.Status) {
		return apperrors.NewValidationError("unknown ticket status", map[string]any{"status": input.Status})
	}
	switch input.Recipient {
	case domain.RecipientClient, domain.RecipientTechnician, domain.RecipientAdmin:
	default:
		return apperrors.NewValidationError("unknown recipient class", map[string]any{"recipient": input.Recipient})
	}
	return nil
}
