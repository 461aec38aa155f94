package lifecycle

import (
	"context"

	"github.com/mp2tech/service-center/internal/domain"
)

// The approval gate holds technician-created tickets in in_queue with
// needs_approval set until an admin resolves them. Admin-created tickets skip
// the gate entirely.

// InitialState returns the status and approval flag a new ticket starts in,
// given the creator's role.
func InitialState(creator domain.Role) (domain.TicketStatus, bool) {
	if creator == domain.RoleTechnician {
		return domain.StatusInQueue, true
	}
	return domain.StatusInQueue, false
}

// Approve releases a pending ticket into the normal flow: status in_queue,
// needs_approval cleared. Calling it again denies via the policy.
func (e *Engine) Approve(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	return e.resolveApproval(ctx, actor, ticketID, domain.StatusInQueue)
}

// Reject puts a pending ticket into the terminal rejected state. Rejection
// clears needs_approval as well, so a later Approve denies instead of
// resurrecting the ticket.
func (e *Engine) Reject(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	return e.resolveApproval(ctx, actor, ticketID, domain.StatusRejected)
}

func (e *Engine) resolveApproval(ctx context.Context, actor Actor, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := e.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if decision := e.policy.CheckApproval(actor, ticket); !decision.Allowed {
		return nil, denialError(decision, ticket)
	}

	from := ticket.Status
	ticket.Status = target
	ticket.NeedsApproval = false
	expected := ticket.UpdatedAt
	ticket.UpdatedAt = e.now()

	if err := e.persist(ctx, ticket, expected); err != nil {
		return nil, err
	}
	e.emitStatusChanged(ctx, actor, ticket, from)
	return ticket, nil
}
