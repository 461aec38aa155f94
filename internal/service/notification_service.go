package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
	"github.com/mp2tech/service-center/internal/repository"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

// NotificationService maintains the in-app notification feed. It subscribes
// to ticket events and writes one row per recipient.
type NotificationService struct {
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	ProfileRepo      repository.ProfileRepository
	Dispatcher       events.Dispatcher
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		profiles:      deps.ProfileRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
}

// handleTicketCreated alerts every admin when a ticket arrives held for
// approval. Admin-created tickets need no alert.
func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok || !payload.NeedsApproval {
		return nil
	}

	admins, err := n.profiles.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	ticketID := event.TicketID
	for _, admin := range admins {
		notification := &domain.Notification{
			UserID:   admin.ID,
			Title:    "New Ticket Generated",
			Message:  fmt.Sprintf("Ticket %q is waiting for your approval.", payload.Title),
			TicketID: &ticketID,
		}
		if err := n.notifications.Create(ctx, notification); err != nil {
			n.logger.Warn("admin notification write failed",
				zap.String("ticket_id", event.TicketID),
				zap.String("user_id", admin.ID),
				zap.Error(err))
		}
	}
	return nil
}

// handleStatusChanged alerts the acting technician's counterpart. Today the
// only in-app consumer is the technician on assignment.
func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok || payload.ToStatus != domain.StatusAssigned {
		return nil
	}
	ticketID := event.TicketID
	notification := &domain.Notification{
		UserID:   event.Actor.ID,
		Title:    "Ticket Assigned",
		Message:  fmt.Sprintf("Ticket %s was assigned.", ticketID),
		TicketID: &ticketID,
	}
	return n.notifications.Create(ctx, notification)
}

// List returns a user's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	return n.notifications.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead flags one notification as read. Users can only touch their own.
func (n *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := n.notifications.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
