package lifecycle

import (
	"github.com/mp2tech/service-center/internal/domain"
)

// DenyReason explains why a transition was refused.
type DenyReason string

const (
	DenyForbidden       DenyReason = "Forbidden"
	DenyNoOpTransition  DenyReason = "NoOpTransition"
	DenyPendingApproval DenyReason = "PendingApproval"
	DenyUnknownStatus   DenyReason = "UnknownStatus"
)

// Decision is the outcome of a policy check. Deny never carries an error;
// callers surface the reason and leave state unchanged.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Actor identifies who requests a transition. Role and ID are passed
// explicitly so the policy is testable without a live session.
type Actor struct {
	ID   string
	Role domain.Role
}

// technicianTargets is the fixed subset of states a technician may move an
// assigned ticket into. Everything billing-side (complete, invoice_sent,
// payment_received) stays admin-only, as does assignment itself.
var technicianTargets = map[domain.TicketStatus]struct{}{
	domain.StatusTicketAccepted:  {},
	domain.StatusPickup:          {},
	domain.StatusProductReceived: {},
	domain.StatusInProgress:      {},
	domain.StatusDelivered:       {},
	domain.StatusDone:            {},
	domain.StatusOnHold:          {},
}

// Policy decides, per (actor role, current state, requested state), whether a
// transition is legal. It is a pure lookup with no side effects.
type Policy struct{}

// NewPolicy returns the transition policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// CheckTransition evaluates a requested status change against the rule table.
func (p *Policy) CheckTransition(actor Actor, ticket *domain.Ticket, requested domain.TicketStatus) Decision {
	if !domain.IsRegisteredStatus(requested) {
		return deny(DenyUnknownStatus)
	}
	if requested == ticket.Status {
		return deny(DenyNoOpTransition)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		// Admins pick any status from the full set, including non-sequential
		// jumps. The approval pseudo-actions are checked separately.
		return allow()
	case domain.RoleTechnician:
		if ticket.NeedsApproval {
			return deny(DenyPendingApproval)
		}
		if ticket.TechnicianID == nil || *ticket.TechnicianID != actor.ID {
			return deny(DenyForbidden)
		}
		if domain.IsTerminalStatus(ticket.Status) {
			return deny(DenyForbidden)
		}
		if _, ok := technicianTargets[requested]; !ok {
			return deny(DenyForbidden)
		}
		return allow()
	default:
		return deny(DenyForbidden)
	}
}

// CheckApproval evaluates the approve/reject pseudo-actions. Only admins may
// resolve the gate, and only while the ticket still needs approval.
func (p *Policy) CheckApproval(actor Actor, ticket *domain.Ticket) Decision {
	if actor.Role != domain.RoleAdmin {
		return deny(DenyForbidden)
	}
	if !ticket.NeedsApproval {
		return deny(DenyNoOpTransition)
	}
	return allow()
}

// AllowedTargets lists the statuses the actor may move the ticket into,
// in registry order. Used to drive role-aware dropdowns.
func (p *Policy) AllowedTargets(actor Actor, ticket *domain.Ticket) []domain.TicketStatus {
	out := []domain.TicketStatus{}
	for _, status := range domain.AllStatuses() {
		if p.CheckTransition(actor, ticket, status).Allowed {
			out = append(out, status)
		}
	}
	return out
}
