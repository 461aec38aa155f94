package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// fakeStore keeps a single ticket in memory and honors the optimistic check.
type fakeStore struct {
	ticket    *domain.Ticket
	updateErr error
	updates   int
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	if s.ticket == nil || s.ticket.ID != id {
		return nil, pgx.ErrNoRows
	}
	copied := *s.ticket
	return &copied, nil
}

func (s *fakeStore) UpdateLifecycle(_ context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if !s.ticket.UpdatedAt.Equal(expectedUpdatedAt) {
		return ErrVersionConflict
	}
	s.updates++
	copied := *ticket
	s.ticket = &copied
	return nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func newTestEngine(ticket *domain.Ticket) (*Engine, *fakeStore, *recordingDispatcher) {
	store := &fakeStore{ticket: ticket}
	dispatcher := &recordingDispatcher{}
	engine := NewEngine(store, NewPolicy(), dispatcher)
	return engine, store, dispatcher
}

func baseTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:        "t-1",
		Status:    domain.StatusInQueue,
		UpdatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestApplyTransition(t *testing.T) {
	admin := Actor{ID: "adm-1", Role: domain.RoleAdmin}

	t.Run("persists and emits on success", func(t *testing.T) {
		engine, store, dispatcher := newTestEngine(baseTicket())

		ticket, err := engine.ApplyTransition(context.Background(), admin, "t-1", domain.StatusAssigned)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAssigned, ticket.Status)
		assert.Equal(t, 1, store.updates)

		require.Len(t, dispatcher.published, 1)
		event := dispatcher.published[0]
		assert.Equal(t, events.EventTicketStatusChanged, event.Type)
		payload := event.Payload.(events.StatusChangedPayload)
		assert.Equal(t, domain.StatusInQueue, payload.FromStatus)
		assert.Equal(t, domain.StatusAssigned, payload.ToStatus)
	})

	t.Run("denial leaves ticket untouched and emits nothing", func(t *testing.T) {
		ticket := baseTicket()
		ticket.NeedsApproval = true
		engine, store, dispatcher := newTestEngine(ticket)

		tech := Actor{ID: "tech-1", Role: domain.RoleTechnician}
		_, err := engine.ApplyTransition(context.Background(), tech, "t-1", domain.StatusInProgress)

		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, "PENDING_APPROVAL", domainErr.Code)
		assert.Zero(t, store.updates)
		assert.Empty(t, dispatcher.published)
	})

	t.Run("missing ticket maps to not found", func(t *testing.T) {
		engine, _, _ := newTestEngine(baseTicket())

		_, err := engine.ApplyTransition(context.Background(), admin, "nope", domain.StatusAssigned)
		assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	})

	t.Run("soft-deleted ticket maps to not found", func(t *testing.T) {
		ticket := baseTicket()
		ticket.IsDeleted = true
		engine, _, _ := newTestEngine(ticket)

		_, err := engine.ApplyTransition(context.Background(), admin, "t-1", domain.StatusAssigned)
		assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	})

	t.Run("stale write maps to conflict and emits nothing", func(t *testing.T) {
		engine, store, dispatcher := newTestEngine(baseTicket())
		store.updateErr = ErrVersionConflict

		_, err := engine.ApplyTransition(context.Background(), admin, "t-1", domain.StatusAssigned)
		assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
		assert.Empty(t, dispatcher.published)
	})
}

func TestAssign(t *testing.T) {
	admin := Actor{ID: "adm-1", Role: domain.RoleAdmin}

	t.Run("sets technician and status in one write", func(t *testing.T) {
		engine, store, dispatcher := newTestEngine(baseTicket())

		ticket, err := engine.Assign(context.Background(), admin, "t-1", "tech-9")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAssigned, ticket.Status)
		require.NotNil(t, ticket.TechnicianID)
		assert.Equal(t, "tech-9", *ticket.TechnicianID)
		assert.Equal(t, 1, store.updates)
		assert.Len(t, dispatcher.published, 1)
	})

	t.Run("technicians cannot assign", func(t *testing.T) {
		engine, _, _ := newTestEngine(baseTicket())

		tech := Actor{ID: "tech-1", Role: domain.RoleTechnician}
		_, err := engine.Assign(context.Background(), tech, "t-1", "tech-1")
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	})
}

func TestApprovalGate(t *testing.T) {
	admin := Actor{ID: "adm-1", Role: domain.RoleAdmin}

	pendingTicket := func() *domain.Ticket {
		ticket := baseTicket()
		ticket.NeedsApproval = true
		return ticket
	}

	t.Run("initial state per creator role", func(t *testing.T) {
		status, needsApproval := InitialState(domain.RoleTechnician)
		assert.Equal(t, domain.StatusInQueue, status)
		assert.True(t, needsApproval)

		status, needsApproval = InitialState(domain.RoleAdmin)
		assert.Equal(t, domain.StatusInQueue, status)
		assert.False(t, needsApproval)
	})

	t.Run("approve clears the flag and keeps in_queue", func(t *testing.T) {
		engine, store, dispatcher := newTestEngine(pendingTicket())

		ticket, err := engine.Approve(context.Background(), admin, "t-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInQueue, ticket.Status)
		assert.False(t, ticket.NeedsApproval)
		assert.False(t, store.ticket.NeedsApproval)
		assert.Len(t, dispatcher.published, 1)
	})

	t.Run("reject terminates and clears the flag", func(t *testing.T) {
		engine, store, _ := newTestEngine(pendingTicket())

		ticket, err := engine.Reject(context.Background(), admin, "t-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, ticket.Status)
		assert.False(t, ticket.NeedsApproval)

		// A second resolution denies: the gate is closed.
		_, err = engine.Approve(context.Background(), admin, "t-1")
		assert.Equal(t, "NO_OP_TRANSITION", apperrors.ToDomainError(err).Code)
		assert.Equal(t, domain.StatusRejected, store.ticket.Status)
	})

	t.Run("technician cannot resolve the gate", func(t *testing.T) {
		engine, _, _ := newTestEngine(pendingTicket())

		tech := Actor{ID: "tech-1", Role: domain.RoleTechnician}
		_, err := engine.Approve(context.Background(), tech, "t-1")
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	})
}
