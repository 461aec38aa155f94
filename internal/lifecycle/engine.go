package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// TicketStore is the slice of persistence the engine needs. GetByID must
// exclude soft-deleted rows; UpdateLifecycle must reject the write when the
// row's updated_at no longer matches expectedUpdatedAt (lost-update guard).
type TicketStore interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateLifecycle(ctx context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error
}

// ErrVersionConflict is returned by stores when the optimistic check fails.
var ErrVersionConflict = errors.New("ticket modified concurrently")

// Engine is the ticket lifecycle state machine. It holds no state between
// invocations; every call reloads the ticket, consults the policy, persists
// the mutation and only then emits a StatusChanged event. A failed write
// never produces an event.
type Engine struct {
	store      TicketStore
	policy     *Policy
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewEngine constructs the lifecycle engine.
func NewEngine(store TicketStore, policy *Policy, dispatcher events.Dispatcher) *Engine {
	return &Engine{
		store:      store,
		policy:     policy,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// ApplyTransition moves a ticket into the requested status on behalf of the
// actor. Policy denials come back as DomainErrors and leave the row untouched.
func (e *Engine) ApplyTransition(ctx context.Context, actor Actor, ticketID string, requested domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if decision := e.policy.CheckTransition(actor, ticket, requested); !decision.Allowed {
		return nil, denialError(decision, ticket)
	}

	from := ticket.Status
	ticket.Status = requested
	expected := ticket.UpdatedAt
	ticket.UpdatedAt = e.now()

	if err := e.persist(ctx, ticket, expected); err != nil {
		return nil, err
	}
	e.emitStatusChanged(ctx, actor, ticket, from)
	return ticket, nil
}

// Assign sets the technician and moves the ticket into assigned in one write,
// keeping the "technician set iff assigned" invariant. Admin only.
func (e *Engine) Assign(ctx context.Context, actor Actor, ticketID, technicianID string) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can assign technicians")
	}
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if decision := e.policy.CheckTransition(actor, ticket, domain.StatusAssigned); !decision.Allowed {
		return nil, denialError(decision, ticket)
	}

	from := ticket.Status
	ticket.Status = domain.StatusAssigned
	ticket.TechnicianID = &technicianID
	expected := ticket.UpdatedAt
	ticket.UpdatedAt = e.now()

	if err := e.persist(ctx, ticket, expected); err != nil {
		return nil, err
	}
	e.emitStatusChanged(ctx, actor, ticket, from)
	return ticket, nil
}

func (e *Engine) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := e.store.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.IsDeleted {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (e *Engine) persist(ctx context.Context, ticket *domain.Ticket, expected time.Time) error {
	if err := e.store.UpdateLifecycle(ctx, ticket, expected); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return apperrors.NewConflict("ticket was modified concurrently, retry",
				map[string]any{"ticket_id": ticket.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (e *Engine) emitStatusChanged(ctx context.Context, actor Actor, ticket *domain.Ticket, from domain.TicketStatus) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketStatusChanged,
		TicketID:  ticket.ID,
		Actor:     events.Actor{ID: actor.ID, Role: actor.Role},
		Timestamp: ticket.UpdatedAt,
		Payload: events.StatusChangedPayload{
			FromStatus: from,
			ToStatus:   ticket.Status,
		},
	})
}

func denialError(decision Decision, ticket *domain.Ticket) error {
	switch decision.Reason {
	case DenyNoOpTransition:
		return apperrors.NewNoOpTransition(string(ticket.Status))
	case DenyPendingApproval:
		return apperrors.NewPendingApproval(ticket.ID)
	case DenyUnknownStatus:
		return apperrors.NewValidationError("unknown ticket status", nil)
	default:
		return apperrors.NewForbidden("transition not permitted for role")
	}
}
