package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
	"github.com/mp2tech/service-center/internal/lifecycle"
	"github.com/mp2tech/service-center/internal/repository"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// In-memory repository fakes shared by the service tests in this package.

type fakeTicketRepo struct {
	tickets    map[string]*domain.Ticket
	seq        int
	lastFilter repository.TicketFilter
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("t-%d", r.seq)
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) UpdateLifecycle(_ context.Context, ticket *domain.Ticket, _ time.Time) error {
	return r.Update(context.Background(), ticket)
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.lastFilter = filter
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.TechnicianID != nil {
			if ticket.TechnicianID == nil || *ticket.TechnicianID != *filter.TechnicianID {
				continue
			}
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) SetArchived(_ context.Context, id string, archived bool) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Archived = archived
	return nil
}

func (r *fakeTicketRepo) SoftDelete(_ context.Context, id string) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.IsDeleted = true
	return nil
}

func (r *fakeTicketRepo) CountByStatus(context.Context) (map[domain.TicketStatus]int64, error) {
	counts := map[domain.TicketStatus]int64{}
	for _, ticket := range r.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

type fakeCustomerRepo struct {
	customers map[string]*domain.Customer
}

func newFakeCustomerRepo(customers ...*domain.Customer) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{customers: map[string]*domain.Customer{}}
	for _, c := range customers {
		repo.customers[c.ID] = c
	}
	return repo
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *domain.Customer) error {
	if _, ok := r.customers[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return customer, nil
}

func (r *fakeCustomerRepo) Search(context.Context, string, int) ([]domain.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) List(context.Context, int, int) ([]domain.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.customers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.customers, id)
	return nil
}

type fakeRemarkRepo struct {
	remarks []*domain.TicketRemark
	seq     int
}

func (r *fakeRemarkRepo) Create(_ context.Context, remark *domain.TicketRemark) error {
	r.seq++
	remark.ID = fmt.Sprintf("r-%d", r.seq)
	remark.CreatedAt = time.Now()
	for i := range remark.Attachments {
		remark.Attachments[i].RemarkID = remark.ID
	}
	r.remarks = append(r.remarks, remark)
	return nil
}

func (r *fakeRemarkRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketRemark, error) {
	var out []domain.TicketRemark
	for _, remark := range r.remarks {
		if remark.TicketID == ticketID {
			out = append(out, *remark)
		}
	}
	return out, nil
}

type fakeObjectStore struct {
	puts   map[string][]byte
	putErr error
}

func (s *fakeObjectStore) Put(_ context.Context, name string, data []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[name] = data
	return "objects/" + name, nil
}

func (s *fakeObjectStore) Get(_ context.Context, path string) ([]byte, error) {
	return s.puts[path], nil
}

func (s *fakeObjectStore) Delete(_ context.Context, path string) error {
	delete(s.puts, path)
	return nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func newTicketService(tickets *fakeTicketRepo, customers *fakeCustomerRepo) (*TicketService, *capturingDispatcher, *fakeRemarkRepo, *fakeObjectStore) {
	dispatcher := &capturingDispatcher{}
	remarks := &fakeRemarkRepo{}
	store := &fakeObjectStore{}
	engine := lifecycle.NewEngine(tickets, lifecycle.NewPolicy(), dispatcher)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		CustomerRepo: customers,
		RemarkRepo:   remarks,
		Engine:       engine,
		Dispatcher:   dispatcher,
		Store:        store,
	})
	return svc, dispatcher, remarks, store
}

func TestCreateTicket(t *testing.T) {
	customer := &domain.Customer{ID: "c-1", Name: "Asha", Mobile: "+911111111111"}

	t.Run("technician-created tickets start held for approval", func(t *testing.T) {
		svc, dispatcher, _, _ := newTicketService(newFakeTicketRepo(), newFakeCustomerRepo(customer))

		ticket, err := svc.CreateTicket(context.Background(),
			lifecycle.Actor{ID: "tech-1", Role: domain.RoleTechnician},
			TicketCreateInput{CustomerID: "c-1", Title: "Laptop repair"})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusInQueue, ticket.Status)
		assert.True(t, ticket.NeedsApproval)
		assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
		assert.Equal(t, domain.TicketTypeCustomer, ticket.TicketType)

		require.Len(t, dispatcher.published, 1)
		event := dispatcher.published[0]
		assert.Equal(t, events.EventTicketCreated, event.Type)
		assert.NotEmpty(t, event.ID)
		payload := event.Payload.(events.TicketCreatedPayload)
		assert.True(t, payload.NeedsApproval)
	})

	t.Run("admin-created tickets skip the gate", func(t *testing.T) {
		svc, dispatcher, _, _ := newTicketService(newFakeTicketRepo(), newFakeCustomerRepo(customer))

		ticket, err := svc.CreateTicket(context.Background(),
			lifecycle.Actor{ID: "adm-1", Role: domain.RoleAdmin},
			TicketCreateInput{CustomerID: "c-1", Title: "Laptop repair"})
		require.NoError(t, err)

		assert.False(t, ticket.NeedsApproval)
		payload := dispatcher.published[0].Payload.(events.TicketCreatedPayload)
		assert.False(t, payload.NeedsApproval)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		svc, _, _, _ := newTicketService(newFakeTicketRepo(), newFakeCustomerRepo(customer))

		_, err := svc.CreateTicket(context.Background(),
			lifecycle.Actor{ID: "adm-1", Role: domain.RoleAdmin},
			TicketCreateInput{CustomerID: "c-1", Title: "   "})
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	})

	t.Run("unknown customer rejected", func(t *testing.T) {
		svc, _, _, _ := newTicketService(newFakeTicketRepo(), newFakeCustomerRepo())

		_, err := svc.CreateTicket(context.Background(),
			lifecycle.Actor{ID: "adm-1", Role: domain.RoleAdmin},
			TicketCreateInput{CustomerID: "ghost", Title: "Laptop repair"})
		assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	})
}

func TestListTicketsScopesTechnicians(t *testing.T) {
	techID := "tech-1"
	otherID := "tech-2"
	mine := &domain.Ticket{ID: "t-1", Status: domain.StatusAssigned, TechnicianID: &techID}
	theirs := &domain.Ticket{ID: "t-2", Status: domain.StatusAssigned, TechnicianID: &otherID}
	tickets := newFakeTicketRepo(mine, theirs)
	svc, _, _, _ := newTicketService(tickets, newFakeCustomerRepo())

	listed, err := svc.ListTickets(context.Background(),
		lifecycle.Actor{ID: techID, Role: domain.RoleTechnician}, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "t-1", listed[0].ID)
	require.NotNil(t, tickets.lastFilter.TechnicianID)
	assert.Equal(t, techID, *tickets.lastFilter.TechnicianID)

	listed, err = svc.ListTickets(context.Background(),
		lifecycle.Actor{ID: "adm-1", Role: domain.RoleAdmin}, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.Nil(t, tickets.lastFilter.TechnicianID)
}

func TestGetTicketVisibility(t *testing.T) {
	techID := "tech-1"
	ticket := &domain.Ticket{ID: "t-1", Status: domain.StatusAssigned, TechnicianID: &techID, CreatedBy: "adm-1"}
	svc, _, remarks, _ := newTicketService(newFakeTicketRepo(ticket), newFakeCustomerRepo())
	require.NoError(t, remarks.Create(context.Background(), &domain.TicketRemark{TicketID: "t-1", Text: "diagnosed"}))

	t.Run("assigned technician sees the ticket and remarks", func(t *testing.T) {
		got, trail, err := svc.GetTicket(context.Background(),
			lifecycle.Actor{ID: techID, Role: domain.RoleTechnician}, "t-1")
		require.NoError(t, err)
		assert.Equal(t, "t-1", got.ID)
		assert.Len(t, trail, 1)
	})

	t.Run("other technicians are blocked", func(t *testing.T) {
		_, _, err := svc.GetTicket(context.Background(),
			lifecycle.Actor{ID: "tech-9", Role: domain.RoleTechnician}, "t-1")
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	})

	t.Run("missing ticket is not found", func(t *testing.T) {
		_, _, err := svc.GetTicket(context.Background(),
			lifecycle.Actor{ID: "adm-1", Role: domain.RoleAdmin}, "nope")
		assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	})
}

func TestEditTicketPartialUpdate(t *testing.T) {
	ticket := &domain.Ticket{ID: "t-1", Title: "Old title", Description: "old", Status: domain.StatusInQueue}
	tickets := newFakeTicketRepo(ticket)
	svc, _, _, _ := newTicketService(tickets, newFakeCustomerRepo())
	admin := lifecycle.Actor{ID: "adm-1", Role: domain.RoleAdmin}

	estimate := 1500.0
	pickupDate := "2025-06-02"
	updated, err := svc.EditTicket(context.Background(), admin, "t-1", TicketEditInput{
		EstimateAmount: &estimate,
		PickupDate:     &pickupDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Old title", updated.Title)
	require.NotNil(t, updated.EstimateAmount)
	assert.Equal(t, estimate, *updated.EstimateAmount)
	require.NotNil(t, updated.PickupDate)
	assert.Equal(t, pickupDate, *updated.PickupDate)

	empty := " "
	_, err = svc.EditTicket(context.Background(), admin, "t-1", TicketEditInput{Title: &empty})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestArchiveAndDeleteAreAdminOnly(t *testing.T) {
	ticket := &domain.Ticket{ID: "t-1", Status: domain.StatusComplete}
	tickets := newFakeTicketRepo(ticket)
	svc, _, _, _ := newTicketService(tickets, newFakeCustomerRepo())
	tech := lifecycle.Actor{ID: "tech-1", Role: domain.RoleTechnician}
	admin := lifecycle.Actor{ID: "adm-1", Role: domain.RoleAdmin}

	err := svc.SetArchived(context.Background(), tech, "t-1", true)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	require.NoError(t, svc.SetArchived(context.Background(), admin, "t-1", true))
	assert.True(t, tickets.tickets["t-1"].Archived)

	err = svc.SoftDelete(context.Background(), tech, "t-1")
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	require.NoError(t, svc.SoftDelete(context.Background(), admin, "t-1"))
	assert.True(t, tickets.tickets["t-1"].IsDeleted)
}

func TestAddRemark(t *testing.T) {
	techID := "tech-1"
	ticket := &domain.Ticket{ID: "t-1", Status: domain.StatusInProgress, TechnicianID: &techID}
	actor := lifecycle.Actor{ID: techID, Role: domain.RoleTechnician}

	t.Run("requires text or attachment", func(t *testing.T) {
		svc, _, _, _ := newTicketService(newFakeTicketRepo(ticket), newFakeCustomerRepo())

		_, err := svc.AddRemark(context.Background(), actor, "t-1", "  ", nil)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	})

	t.Run("stores attachments alongside the remark", func(t *testing.T) {
		svc, _, remarks, store := newTicketService(newFakeTicketRepo(ticket), newFakeCustomerRepo())

		remark, err := svc.AddRemark(context.Background(), actor, "t-1", "replaced screen", []RemarkAttachmentInput{
			{Name: "before.jpg", Data: []byte{0x01}},
		})
		require.NoError(t, err)
		assert.Equal(t, "replaced screen", remark.Text)
		require.Len(t, remark.Attachments, 1)
		assert.Equal(t, "objects/before.jpg", remark.Attachments[0].Path)
		assert.Equal(t, remark.ID, remark.Attachments[0].RemarkID)
		require.Len(t, remarks.remarks, 1)
		assert.Contains(t, store.puts, "before.jpg")
	})

	t.Run("failed upload leaves no remark behind", func(t *testing.T) {
		svc, _, remarks, store := newTicketService(newFakeTicketRepo(ticket), newFakeCustomerRepo())
		store.putErr = errors.New("disk full")

		_, err := svc.AddRemark(context.Background(), actor, "t-1", "replaced screen", []RemarkAttachmentInput{
			{Name: "before.jpg", Data: []byte{0x01}},
		})
		require.Error(t, err)
		assert.Empty(t, remarks.remarks)
	})
}

func TestStatusCounts(t *testing.T) {
	tickets := newFakeTicketRepo(
		&domain.Ticket{ID: "t-1", Status: domain.StatusInQueue},
		&domain.Ticket{ID: "t-2", Status: domain.StatusInQueue},
		&domain.Ticket{ID: "t-3", Status: domain.StatusDone},
	)
	svc, _, _, _ := newTicketService(tickets, newFakeCustomerRepo())

	counts, err := svc.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusInQueue])
	assert.Equal(t, int64(1), counts[domain.StatusDone])
}
