package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
)

type fakeGateway struct {
	mu    sync.Mutex
	sent  []Job
	fails map[string]error
}

func (g *fakeGateway) Send(_ context.Context, phone, templateKey string, variables []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.fails[phone]; ok {
		return err
	}
	g.sent = append(g.sent, Job{Phone: phone, TemplateKey: templateKey, Variables: variables})
	return nil
}

type fakeTicketReader struct{ ticket *domain.Ticket }

func (r fakeTicketReader) GetByID(context.Context, string) (*domain.Ticket, error) {
	return r.ticket, nil
}

type fakeCustomerReader struct{ customer *domain.Customer }

func (r fakeCustomerReader) GetByID(context.Context, string) (*domain.Customer, error) {
	return r.customer, nil
}

type fakeProfileReader struct{ profile *domain.Profile }

func (r fakeProfileReader) GetByID(context.Context, string) (*domain.Profile, error) {
	if r.profile == nil {
		return nil, errors.New("no profile")
	}
	return r.profile, nil
}

func testSnapshot() Snapshot {
	return Snapshot{
		TicketID:        "t-1",
		Description:     "screen cracked",
		CustomerName:    "Asha",
		CustomerPhone:   "+911111111111",
		TechnicianPhone: "+922222222222",
		PickupDate:      "2025-06-02",
		PickupTime:      "11:00",
		DeliveryDate:    "2025-06-05",
		DeliveryTime:    "16:30",
		EstimateAmount:  "2500.00",
	}
}

func TestBuildJobs(t *testing.T) {
	const adminPhone = "+933333333333"

	tests := []struct {
		status domain.TicketStatus
		want   []Job
	}{
		{
			status: domain.StatusAssigned,
			want: []Job{
				{domain.RecipientTechnician, "+922222222222", "ticket_assigned", []string{"t-1", "Asha", "screen cracked"}},
			},
		},
		{
			status: domain.StatusInProgress,
			want: []Job{
				{domain.RecipientClient, "+911111111111", "technician_started", []string{"Asha", "t-1"}},
				{domain.RecipientAdmin, adminPhone, "technician_started", []string{"t-1", "Asha"}},
			},
		},
		{
			status: domain.StatusPickup,
			want: []Job{
				{domain.RecipientClient, "+911111111111", "pickup_scheduled", []string{"Asha", "2025-06-02", "11:00"}},
				{domain.RecipientAdmin, adminPhone, "pickup_scheduled", []string{"t-1", "Asha", "2025-06-02", "11:00"}},
			},
		},
		{
			status: domain.StatusProductReceived,
			want: []Job{
				{domain.RecipientClient, "+911111111111", "product_received", []string{"Asha", "t-1"}},
				{domain.RecipientAdmin, adminPhone, "product_received", []string{"t-1", "Asha"}},
			},
		},
		{
			status: domain.StatusClientApproval,
			want: []Job{
				{domain.RecipientClient, "+911111111111", "estimate_sent", []string{"Asha", "t-1", "2500.00"}},
			},
		},
		{
			status: domain.StatusDeliveryScheduled,
			want: []Job{
				{domain.RecipientClient, "+911111111111", "delivery_scheduled", []string{"Asha", "2025-06-05", "16:30"}},
				{domain.RecipientAdmin, adminPhone, "delivery_scheduled", []string{"t-1", "Asha", "2025-06-05", "16:30"}},
			},
		},
		{
			status: domain.StatusDone,
			want: []Job{
				{domain.RecipientClient, "+911111111111", "feedback", []string{"Asha", "t-1"}},
				{domain.RecipientAdmin, adminPhone, "generate_invoice", []string{"t-1", "Asha"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			jobs := BuildJobs(tt.status, testSnapshot(), adminPhone)
			assert.Equal(t, tt.want, jobs)
		})
	}
}

func TestBuildCreationJobs(t *testing.T) {
	jobs := BuildCreationJobs(testSnapshot(), "+933333333333")
	assert.Equal(t, []Job{
		{domain.RecipientClient, "+911111111111", "query_received", []string{"Asha", "t-1"}},
		{domain.RecipientAdmin, "+933333333333", "new_ticket_generated", []string{"t-1", "Asha", "screen cracked"}},
	}, jobs)
}

func TestBuildJobsUnroutedStatuses(t *testing.T) {
	for _, status := range []domain.TicketStatus{
		domain.StatusInQueue,
		domain.StatusTicketAccepted,
		domain.StatusDelivered,
		domain.StatusInvoiceSent,
		domain.StatusPaymentReceived,
		domain.StatusComplete,
		domain.StatusOnHold,
		domain.StatusRejected,
	} {
		assert.Empty(t, BuildJobs(status, testSnapshot(), "+933333333333"), "status %q", status)
	}
}

func TestDispatchAllFailureIsolation(t *testing.T) {
	gateway := &fakeGateway{fails: map[string]error{
		"+911111111111": errors.New("graph api down"),
	}}
	dispatcher := NewDispatcher(gateway, nil, nil, nil, "", zap.NewNop())

	jobs := []Job{
		{Recipient: domain.RecipientClient, Phone: "+911111111111", TemplateKey: "feedback"},
		{Recipient: domain.RecipientAdmin, Phone: "+933333333333", TemplateKey: "generate_invoice"},
		{Recipient: domain.RecipientTechnician, TemplateKey: "ticket_assigned"}, // no phone
	}
	errs := dispatcher.DispatchAll(context.Background(), jobs)

	assert.Len(t, errs, 2)
	require.Len(t, gateway.sent, 1)
	assert.Equal(t, "+933333333333", gateway.sent[0].Phone)
}

func TestHandleStatusChanged(t *testing.T) {
	technicianID := "tech-1"
	pickupDate := "2025-06-02"
	pickupTime := "11:00"
	ticket := &domain.Ticket{
		ID:           "t-1",
		CustomerID:   "c-1",
		TechnicianID: &technicianID,
		Description:  "screen cracked",
		PickupDate:   &pickupDate,
		PickupTime:   &pickupTime,
	}
	gateway := &fakeGateway{}
	dispatcher := NewDispatcher(gateway,
		fakeTicketReader{ticket: ticket},
		fakeCustomerReader{customer: &domain.Customer{Name: "Asha", Mobile: "+911111111111"}},
		fakeProfileReader{profile: &domain.Profile{Mobile: "+922222222222"}},
		"+933333333333", zap.NewNop())

	err := dispatcher.HandleStatusChanged(context.Background(), events.Event{
		TicketID:  "t-1",
		Timestamp: time.Now(),
		Payload: events.StatusChangedPayload{
			FromStatus: domain.StatusTicketAccepted,
			ToStatus:   domain.StatusPickup,
		},
	})
	require.NoError(t, err)
	assert.Len(t, gateway.sent, 2)
}

func TestHandleStatusChangedApprovalReleaseSendsNothing(t *testing.T) {
	ticket := &domain.Ticket{ID: "t-1", CustomerID: "c-1"}
	gateway := &fakeGateway{}
	dispatcher := NewDispatcher(gateway,
		fakeTicketReader{ticket: ticket},
		fakeCustomerReader{customer: &domain.Customer{Name: "Asha", Mobile: "+911111111111"}},
		fakeProfileReader{},
		"+933333333333", zap.NewNop())

	// An admin approval keeps the ticket in the queue; the intake pair went
	// out at creation and must not repeat.
	err := dispatcher.HandleStatusChanged(context.Background(), events.Event{
		TicketID: "t-1",
		Payload: events.StatusChangedPayload{
			FromStatus: domain.StatusInQueue,
			ToStatus:   domain.StatusInQueue,
		},
	})
	require.NoError(t, err)
	assert.Empty(t, gateway.sent)
}

func TestHandleTicketCreated(t *testing.T) {
	ticket := &domain.Ticket{ID: "t-1", CustomerID: "c-1", Description: "screen cracked"}
	gateway := &fakeGateway{}
	dispatcher := NewDispatcher(gateway,
		fakeTicketReader{ticket: ticket},
		fakeCustomerReader{customer: &domain.Customer{Name: "Asha", Mobile: "+911111111111"}},
		fakeProfileReader{},
		"+933333333333", zap.NewNop())

	err := dispatcher.HandleTicketCreated(context.Background(), events.Event{
		TicketID: "t-1",
		Payload:  events.TicketCreatedPayload{Title: "Laptop repair", NeedsApproval: true},
	})
	require.NoError(t, err)

	templates := make(map[string]bool, len(gateway.sent))
	for _, job := range gateway.sent {
		templates[job.TemplateKey] = true
	}
	assert.True(t, templates["query_received"])
	assert.True(t, templates["new_ticket_generated"])
	assert.Len(t, gateway.sent, 2)
}

func TestHandleStatusChangedIgnoresBadPayload(t *testing.T) {
	gateway := &fakeGateway{}
	dispatcher := NewDispatcher(gateway, nil, nil, nil, "", zap.NewNop())

	err := dispatcher.HandleStatusChanged(context.Background(), events.Event{Payload: "garbage"})
	require.NoError(t, err)
	assert.Empty(t, gateway.sent)
}
