package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
	"github.com/mp2tech/service-center/internal/lifecycle"
	"github.com/mp2tech/service-center/internal/repository"
	"github.com/mp2tech/service-center/internal/storage"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows around the lifecycle engine.
type TicketService struct {
	tickets    repository.TicketRepository
	customers  repository.CustomerRepository
	remarks    repository.RemarkRepository
	engine     *lifecycle.Engine
	dispatcher events.Dispatcher
	store      storage.ObjectStore
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CustomerRepo repository.CustomerRepository
	RemarkRepo   repository.RemarkRepository
	Engine       *lifecycle.Engine
	Dispatcher   events.Dispatcher
	Store        storage.ObjectStore
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		customers:  deps.CustomerRepo,
		remarks:    deps.RemarkRepo,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		store:      deps.Store,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerID  string
	Title       string
	Description string
	IssueType   domain.IssueType
	TicketType  domain.TicketType
	Priority    domain.TicketPriority
	Device      domain.DeviceInfo
}

// TicketListFilter describes listing filters before role scoping.
type TicketListFilter struct {
	Statuses      []domain.TicketStatus
	CustomerID    *string
	NeedsApproval *bool
	Archived      *bool
	SearchTerm    *string
	Limit         int
	Offset        int
}

// TicketEditInput carries optional detail updates; nil fields are untouched.
type TicketEditInput struct {
	Title          *string
	Description    *string
	Priority       *domain.TicketPriority
	IssueType      *domain.IssueType
	Device         *domain.DeviceInfo
	EstimateAmount *float64
	PickupDate     *string
	PickupTime     *string
	DeliveryDate   *string
	DeliveryTime   *string
}

// RemarkAttachmentInput carries an uploaded file for a remark.
type RemarkAttachmentInput struct {
	Name string
	Data []byte
}

// CreateTicket creates a ticket on behalf of the actor. Technician-created
// tickets start held for admin approval; the created event carries the flag
// so the in-app notifier can fan out to admins.
func (s *TicketService) CreateTicket(ctx context.Context, actor lifecycle.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"cust_id": input.CustomerID})
		}
		return nil, apperrors.MapError(err)
	}

	status, needsApproval := lifecycle.InitialState(actor.Role)
	ticket := &domain.Ticket{
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		CustomerID:    input.CustomerID,
		CreatedBy:     actor.ID,
		IssueType:     input.IssueType,
		TicketType:    input.TicketType,
		Priority:      input.Priority,
		Device:        input.Device,
		Status:        status,
		NeedsApproval: needsApproval,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.TicketType == "" {
		ticket.TicketType = domain.TicketTypeCustomer
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketCreatedPayload{
			CustomerID:    ticket.CustomerID,
			Title:         ticket.Title,
			Description:   ticket.Description,
			Priority:      ticket.Priority,
			NeedsApproval: ticket.NeedsApproval,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets visible to the actor. Technicians only see
// tickets assigned to them; admins see everything the filter allows.
func (s *TicketService) ListTickets(ctx context.Context, actor lifecycle.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:      filter.Statuses,
		CustomerID:    filter.CustomerID,
		NeedsApproval: filter.NeedsApproval,
		Archived:      filter.Archived,
		SearchTerm:    filter.SearchTerm,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	if actor.Role == domain.RoleTechnician {
		technicianID := actor.ID
		repoFilter.TechnicianID = &technicianID
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicket fetches a ticket with its remark trail, enforcing visibility.
func (s *TicketService) GetTicket(ctx context.Context, actor lifecycle.Actor, ticketID string) (*domain.Ticket, []domain.TicketRemark, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}
	remarks, err := s.remarks.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, remarks, nil
}

// EditTicket applies detail updates. Status and assignment never change here;
// those go through the lifecycle engine.
func (s *TicketService) EditTicket(ctx context.Context, actor lifecycle.Actor, ticketID string, input TicketEditInput) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", nil)
		}
		ticket.Title = trimmed
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.IssueType != nil {
		ticket.IssueType = *input.IssueType
	}
	if input.Device != nil {
		ticket.Device = *input.Device
	}
	if input.EstimateAmount != nil {
		ticket.EstimateAmount = input.EstimateAmount
	}
	if input.PickupDate != nil {
		ticket.PickupDate = input.PickupDate
	}
	if input.PickupTime != nil {
		ticket.PickupTime = input.PickupTime
	}
	if input.DeliveryDate != nil {
		ticket.DeliveryDate = input.DeliveryDate
	}
	if input.DeliveryTime != nil {
		ticket.DeliveryTime = input.DeliveryTime
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Transition delegates a status change to the lifecycle engine.
func (s *TicketService) Transition(ctx context.Context, actor lifecycle.Actor, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	return s.engine.ApplyTransition(ctx, actor, ticketID, target)
}

// Assign delegates technician assignment to the lifecycle engine.
func (s *TicketService) Assign(ctx context.Context, actor lifecycle.Actor, ticketID, technicianID string) (*domain.Ticket, error) {
	return s.engine.Assign(ctx, actor, ticketID, technicianID)
}

// Approve releases a held ticket into the queue.
func (s *TicketService) Approve(ctx context.Context, actor lifecycle.Actor, ticketID string) (*domain.Ticket, error) {
	return s.engine.Approve(ctx, actor, ticketID)
}

// Reject terminates a held ticket.
func (s *TicketService) Reject(ctx context.Context, actor lifecycle.Actor, ticketID string) (*domain.Ticket, error) {
	return s.engine.Reject(ctx, actor, ticketID)
}

// SetArchived toggles the archive flag. Admin only.
func (s *TicketService) SetArchived(ctx context.Context, actor lifecycle.Actor, ticketID string, archived bool) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins can archive tickets")
	}
	if err := s.tickets.SetArchived(ctx, ticketID, archived); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// SoftDelete hides a ticket from all listings. Admin only.
func (s *TicketService) SoftDelete(ctx context.Context, actor lifecycle.Actor, ticketID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins can delete tickets")
	}
	if err := s.tickets.SoftDelete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// AddRemark appends a remark with optional attachments. Attachment bytes go
// to the object store first and the remark row plus its attachment rows are
// written in one transaction afterwards, so a failed upload leaves no remark
// behind.
func (s *TicketService) AddRemark(ctx context.Context, actor lifecycle.Actor, ticketID, text string, attachments []RemarkAttachmentInput) (*domain.TicketRemark, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return nil, apperrors.NewValidationError("remark text or attachment is required", nil)
	}
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	remark := &domain.TicketRemark{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Text:     text,
	}
	for _, att := range attachments {
		path, err := s.store.Put(ctx, att.Name, att.Data)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		remark.Attachments = append(remark.Attachments, domain.RemarkAttachment{
			Name: att.Name,
			Path: path,
		})
	}
	if err := s.remarks.Create(ctx, remark); err != nil {
		return nil, apperrors.MapError(err)
	}
	return remark, nil
}

// StatusCounts returns ticket totals per status for the dashboard.
func (s *TicketService) StatusCounts(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	return s.tickets.CountByStatus(ctx)
}

// loadVisible fetches a ticket and enforces role visibility: technicians can
// only reach tickets assigned to them or created by them.
func (s *TicketService) loadVisible(ctx context.Context, actor lifecycle.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleTechnician {
		owns := ticket.CreatedBy == actor.ID ||
			(ticket.TechnicianID != nil && *ticket.TechnicianID == actor.ID)
		if !owns {
			return nil, apperrors.NewForbidden("ticket not assigned to you")
		}
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
