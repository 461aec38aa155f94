package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
)

// Snapshot holds the ticket fields notification jobs draw their variables
// from, resolved at event time.
type Snapshot struct {
	TicketID        string
	Description     string
	CustomerName    string
	CustomerPhone   string
	TechnicianPhone string
	PickupDate      string
	PickupTime      string
	DeliveryDate    string
	DeliveryTime    string
	EstimateAmount  string
}

// Job is one outbound message to one recipient.
type Job struct {
	Recipient   domain.RecipientClass
	Phone       string
	TemplateKey string
	Variables   []string
}

type jobSpec struct {
	template  string
	variables func(s Snapshot) []string
}

type statusRoute struct {
	client     *jobSpec
	technician *jobSpec
	admin      *jobSpec
}

// creationRoute fires exactly once, when a ticket is created. Re-entering the
// queue later (approval release, admin corrections) must not re-send it, so
// in_queue is deliberately absent from statusRoutes.
var creationRoute = statusRoute{
	client: &jobSpec{"query_received", func(s Snapshot) []string {
		return []string{s.CustomerName, s.TicketID}
	}},
	admin: &jobSpec{"new_ticket_generated", func(s Snapshot) []string {
		return []string{s.TicketID, s.CustomerName, s.Description}
	}},
}

// statusRoutes is the static status -> recipient-class table. Statuses absent
// from the table dispatch nothing (creation intake handled separately,
// assignment housekeeping, billing statuses the operator triggers template
// sends for manually).
var statusRoutes = map[domain.TicketStatus]statusRoute{
	domain.StatusAssigned: {
		technician: &jobSpec{"ticket_assigned", func(s Snapshot) []string {
			return []string{s.TicketID, s.CustomerName, s.Description}
		}},
	},
	domain.StatusInProgress: {
		client: &jobSpec{"technician_started", func(s Snapshot) []string {
			return []string{s.CustomerName, s.TicketID}
		}},
		admin: &jobSpec{"technician_started", func(s Snapshot) []string {
			return []string{s.TicketID, s.CustomerName}
		}},
	},
	domain.StatusPickup: {
		client: &jobSpec{"pickup_scheduled", func(s Snapshot) []string {
			return []string{s.CustomerName, s.PickupDate, s.PickupTime}
		}},
		admin: &jobSpec{"pickup_scheduled", func(s Snapshot) []string {
			return []string{s.TicketID, s.CustomerName, s.PickupDate, s.PickupTime}
		}},
	},
	domain.StatusProductReceived: {
		client: &jobSpec{"product_received", func(s Snapshot) []string {
			return []string{s.CustomerName, s.TicketID}
		}},
		admin: &jobSpec{"product_received", func(s Snapshot) []string {
			return []string{s.TicketID, s.CustomerName}
		}},
	},
	domain.StatusClientApproval: {
		client: &jobSpec{"estimate_sent", func(s Snapshot) []string {
			return []string{s.CustomerName, s.TicketID, s.EstimateAmount}
		}},
	},
	domain.StatusDeliveryScheduled: {
		client: &jobSpec{"delivery_scheduled", func(s Snapshot) []string {
			return []string{s.CustomerName, s.DeliveryDate, s.DeliveryTime}
		}},
		admin: &jobSpec{"delivery_scheduled", func(s Snapshot) []string {
			return []string{s.TicketID, s.CustomerName, s.DeliveryDate, s.DeliveryTime}
		}},
	},
	domain.StatusDone: {
		client: &jobSpec{"feedback", func(s Snapshot) []string {
			return []string{s.CustomerName, s.TicketID}
		}},
		admin: &jobSpec{"generate_invoice", func(s Snapshot) []string {
			return []string{s.TicketID, s.CustomerName}
		}},
	},
}

// BuildJobs resolves the route table for a target status into concrete jobs.
// Recipients without a reachable phone still produce a job with an empty
// phone; the dispatch step reports those as per-recipient failures.
func BuildJobs(toStatus domain.TicketStatus, snapshot Snapshot, adminPhone string) []Job {
	route, ok := statusRoutes[toStatus]
	if !ok {
		return nil
	}
	return resolveRoute(route, snapshot, adminPhone)
}

// BuildCreationJobs resolves the one-shot creation route into concrete jobs.
func BuildCreationJobs(snapshot Snapshot, adminPhone string) []Job {
	return resolveRoute(creationRoute, snapshot, adminPhone)
}

func resolveRoute(route statusRoute, snapshot Snapshot, adminPhone string) []Job {
	jobs := []Job{}
	if route.client != nil {
		jobs = append(jobs, Job{
			Recipient:   domain.RecipientClient,
			Phone:       snapshot.CustomerPhone,
			TemplateKey: route.client.template,
			Variables:   route.client.variables(snapshot),
		})
	}
	if route.technician != nil {
		jobs = append(jobs, Job{
			Recipient:   domain.RecipientTechnician,
			Phone:       snapshot.TechnicianPhone,
			TemplateKey: route.technician.template,
			Variables:   route.technician.variables(snapshot),
		})
	}
	if route.admin != nil {
		jobs = append(jobs, Job{
			Recipient:   domain.RecipientAdmin,
			Phone:       adminPhone,
			TemplateKey: route.admin.template,
			Variables:   route.admin.variables(snapshot),
		})
	}
	return jobs
}

// ticketReader, customerReader and profileReader are the read slices the
// dispatcher needs to build a snapshot at event time.
type ticketReader interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
}

type customerReader interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type profileReader interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// Dispatcher turns StatusChanged events into WhatsApp jobs and sends them.
// Dispatch is best-effort and independent per recipient: one failed send
// never blocks the others and never surfaces to the transition's caller.
type Dispatcher struct {
	gateway    Gateway
	tickets    ticketReader
	customers  customerReader
	profiles   profileReader
	adminPhone string
	logger     *zap.Logger
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(gateway Gateway, tickets ticketReader, customers customerReader, profiles profileReader, adminPhone string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		gateway:    gateway,
		tickets:    tickets,
		customers:  customers,
		profiles:   profiles,
		adminPhone: adminPhone,
		logger:     logger,
	}
}

// HandleTicketCreated sends the intake pair (client confirmation + admin
// heads-up) for a freshly created ticket. Like status dispatch it always
// returns nil; the ticket row already exists.
func (d *Dispatcher) HandleTicketCreated(ctx context.Context, event events.Event) error {
	if _, ok := event.Payload.(events.TicketCreatedPayload); !ok {
		d.logger.Warn("unexpected payload type for ticket creation", zap.String("ticket_id", event.TicketID))
		return nil
	}

	snapshot, err := d.buildSnapshot(ctx, event.TicketID)
	if err != nil {
		d.logger.Error("notification snapshot failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}

	for _, jobErr := range d.DispatchAll(ctx, BuildCreationJobs(snapshot, d.adminPhone)) {
		d.logger.Warn("notification job failed",
			zap.String("ticket_id", event.TicketID),
			zap.Error(jobErr))
	}
	return nil
}

// HandleStatusChanged is the event-bus entry point. It always returns nil;
// the transition already committed, so failures here are logged only.
func (d *Dispatcher) HandleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		d.logger.Warn("unexpected payload type for status change", zap.String("ticket_id", event.TicketID))
		return nil
	}

	snapshot, err := d.buildSnapshot(ctx, event.TicketID)
	if err != nil {
		d.logger.Error("notification snapshot failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}

	jobs := BuildJobs(payload.ToStatus, snapshot, d.adminPhone)
	if len(jobs) == 0 {
		return nil
	}
	for _, jobErr := range d.DispatchAll(ctx, jobs) {
		d.logger.Warn("notification job failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("to_status", string(payload.ToStatus)),
			zap.Error(jobErr))
	}
	return nil
}

// DispatchAll sends every job concurrently and collects per-job failures
// instead of short-circuiting the group.
func (d *Dispatcher) DispatchAll(ctx context.Context, jobs []Job) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			if err := d.dispatchOne(ctx, job); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(job)
	}
	wg.Wait()
	return errs
}

func (d *Dispatcher) dispatchOne(ctx context.Context, job Job) error {
	if job.Phone == "" {
		return fmt.Errorf("%s recipient for template %s has no phone number", job.Recipient, job.TemplateKey)
	}
	if err := d.gateway.Send(ctx, job.Phone, job.TemplateKey, job.Variables); err != nil {
		return fmt.Errorf("send %s to %s: %w", job.TemplateKey, job.Recipient, err)
	}
	return nil
}

func (d *Dispatcher) buildSnapshot(ctx context.Context, ticketID string) (Snapshot, error) {
	ticket, err := d.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return Snapshot{}, err
	}
	customer, err := d.customers.GetByID(ctx, ticket.CustomerID)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		TicketID:      ticket.ID,
		Description:   ticket.Description,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Mobile,
	}
	if ticket.TechnicianID != nil {
		if tech, err := d.profiles.GetByID(ctx, *ticket.TechnicianID); err == nil {
			snapshot.TechnicianPhone = tech.Mobile
		}
	}
	if ticket.PickupDate != nil {
		snapshot.PickupDate = *ticket.PickupDate
	}
	if ticket.PickupTime != nil {
		snapshot.PickupTime = *ticket.PickupTime
	}
	if ticket.DeliveryDate != nil {
		snapshot.DeliveryDate = *ticket.DeliveryDate
	}
	if ticket.DeliveryTime != nil {
		snapshot.DeliveryTime = *ticket.DeliveryTime
	}
	if ticket.EstimateAmount != nil {
		snapshot.EstimateAmount = strconv.FormatFloat(*ticket.EstimateAmount, 'f', 2, 64)
	}
	return snapshot, nil
}
