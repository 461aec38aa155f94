package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mp2tech/service-center/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestCheckTransition(t *testing.T) {
	policy := NewPolicy()
	admin := Actor{ID: "adm-1", Role: domain.RoleAdmin}
	tech := Actor{ID: "tech-1", Role: domain.RoleTechnician}

	tests := []struct {
		name       string
		actor      Actor
		ticket     domain.Ticket
		requested  domain.TicketStatus
		allowed    bool
		denyReason DenyReason
	}{
		{
			name:       "unknown status denied for anyone",
			actor:      admin,
			ticket:     domain.Ticket{Status: domain.StatusInQueue},
			requested:  "resolved",
			denyReason: DenyUnknownStatus,
		},
		{
			name:       "same status is a no-op",
			actor:      admin,
			ticket:     domain.Ticket{Status: domain.StatusInProgress},
			requested:  domain.StatusInProgress,
			denyReason: DenyNoOpTransition,
		},
		{
			name:      "admin may jump backwards",
			actor:     admin,
			ticket:    domain.Ticket{Status: domain.StatusDelivered},
			requested: domain.StatusInProgress,
			allowed:   true,
		},
		{
			name:      "admin may leave a terminal state",
			actor:     admin,
			ticket:    domain.Ticket{Status: domain.StatusComplete},
			requested: domain.StatusInQueue,
			allowed:   true,
		},
		{
			name:      "technician advances own ticket",
			actor:     tech,
			ticket:    domain.Ticket{Status: domain.StatusAssigned, TechnicianID: strPtr("tech-1")},
			requested: domain.StatusTicketAccepted,
			allowed:   true,
		},
		{
			name:       "technician blocked on someone else's ticket",
			actor:      tech,
			ticket:     domain.Ticket{Status: domain.StatusAssigned, TechnicianID: strPtr("tech-2")},
			requested:  domain.StatusTicketAccepted,
			denyReason: DenyForbidden,
		},
		{
			name:       "technician blocked on unassigned ticket",
			actor:      tech,
			ticket:     domain.Ticket{Status: domain.StatusInQueue},
			requested:  domain.StatusTicketAccepted,
			denyReason: DenyForbidden,
		},
		{
			name:       "technician blocked while approval pending",
			actor:      tech,
			ticket:     domain.Ticket{Status: domain.StatusInQueue, NeedsApproval: true, TechnicianID: strPtr("tech-1")},
			requested:  domain.StatusInProgress,
			denyReason: DenyPendingApproval,
		},
		{
			name:       "technician cannot touch billing states",
			actor:      tech,
			ticket:     domain.Ticket{Status: domain.StatusDone, TechnicianID: strPtr("tech-1")},
			requested:  domain.StatusInvoiceSent,
			denyReason: DenyForbidden,
		},
		{
			name:       "technician cannot assign",
			actor:      tech,
			ticket:     domain.Ticket{Status: domain.StatusInQueue, TechnicianID: strPtr("tech-1")},
			requested:  domain.StatusAssigned,
			denyReason: DenyForbidden,
		},
		{
			name:       "technician cannot leave a terminal state",
			actor:      tech,
			ticket:     domain.Ticket{Status: domain.StatusRejected, TechnicianID: strPtr("tech-1")},
			requested:  domain.StatusInProgress,
			denyReason: DenyForbidden,
		},
		{
			name:      "technician may hold a ticket",
			actor:     tech,
			ticket:    domain.Ticket{Status: domain.StatusInProgress, TechnicianID: strPtr("tech-1")},
			requested: domain.StatusOnHold,
			allowed:   true,
		},
		{
			name:       "unknown role denied",
			actor:      Actor{ID: "x", Role: "viewer"},
			ticket:     domain.Ticket{Status: domain.StatusInQueue},
			requested:  domain.StatusInProgress,
			denyReason: DenyForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.CheckTransition(tt.actor, &tt.ticket, tt.requested)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.denyReason, decision.Reason)
			}
		})
	}
}

func TestCheckApproval(t *testing.T) {
	policy := NewPolicy()
	admin := Actor{ID: "adm-1", Role: domain.RoleAdmin}
	tech := Actor{ID: "tech-1", Role: domain.RoleTechnician}

	pending := domain.Ticket{Status: domain.StatusInQueue, NeedsApproval: true}
	resolved := domain.Ticket{Status: domain.StatusInQueue}

	assert.True(t, policy.CheckApproval(admin, &pending).Allowed)

	decision := policy.CheckApproval(tech, &pending)
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyForbidden, decision.Reason)

	decision = policy.CheckApproval(admin, &resolved)
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyNoOpTransition, decision.Reason)
}

func TestAllowedTargets(t *testing.T) {
	policy := NewPolicy()
	ticket := domain.Ticket{Status: domain.StatusAssigned, TechnicianID: strPtr("tech-1")}

	targets := policy.AllowedTargets(Actor{ID: "tech-1", Role: domain.RoleTechnician}, &ticket)
	assert.ElementsMatch(t, []domain.TicketStatus{
		domain.StatusTicketAccepted,
		domain.StatusPickup,
		domain.StatusProductReceived,
		domain.StatusInProgress,
		domain.StatusDelivered,
		domain.StatusDone,
		domain.StatusOnHold,
	}, targets)

	adminTargets := policy.AllowedTargets(Actor{ID: "adm-1", Role: domain.RoleAdmin}, &ticket)
	// Everything except the current status.
	assert.Len(t, adminTargets, len(domain.AllStatuses())-1)
	assert.NotContains(t, adminTargets, domain.StatusAssigned)
}
