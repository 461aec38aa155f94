package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mp2tech/service-center/internal/domain"
	"github.com/mp2tech/service-center/internal/events"
	apperrors "github.com/mp2tech/service-center/pkg/util/errorutil"
)

type fakeNotificationRepo struct {
	rows      []*domain.Notification
	failUsers map[string]error
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	if err, ok := r.failUsers[notification.UserID]; ok {
		return err
	}
	r.rows = append(r.rows, notification)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if unreadOnly && row.Read {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, row := range r.rows {
		if row.ID == id && row.UserID == userID {
			row.Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeProfileRepo struct {
	profiles []*domain.Profile
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	r.profiles = append(r.profiles, profile)
	return nil
}

func (r *fakeProfileRepo) Update(context.Context, *domain.Profile) error { return nil }

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	for _, profile := range r.profiles {
		if profile.ID == id {
			return profile, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, profile := range r.profiles {
		if profile.Email == email {
			return profile, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, profile := range r.profiles {
		if profile.Role == role {
			out = append(out, *profile)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) SoftDelete(_ context.Context, id string) error {
	for i, profile := range r.profiles {
		if profile.ID == id {
			r.profiles = append(r.profiles[:i], r.profiles[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newNotificationService(notifications *fakeNotificationRepo, profiles *fakeProfileRepo) *NotificationService {
	return NewNotificationService(NotificationDependencies{
		NotificationRepo: notifications,
		ProfileRepo:      profiles,
	}, zap.NewNop())
}

func TestHandleTicketCreated(t *testing.T) {
	profiles := &fakeProfileRepo{profiles: []*domain.Profile{
		{ID: "adm-1", Role: domain.RoleAdmin},
		{ID: "adm-2", Role: domain.RoleAdmin},
		{ID: "tech-1", Role: domain.RoleTechnician},
	}}

	t.Run("held tickets fan out to every admin", func(t *testing.T) {
		notifications := &fakeNotificationRepo{}
		svc := newNotificationService(notifications, profiles)

		err := svc.handleTicketCreated(context.Background(), events.Event{
			Type:     events.EventTicketCreated,
			TicketID: "t-1",
			Payload:  events.TicketCreatedPayload{Title: "Laptop repair", NeedsApproval: true},
		})
		require.NoError(t, err)
		require.Len(t, notifications.rows, 2)
		for _, row := range notifications.rows {
			assert.Equal(t, "New Ticket Generated", row.Title)
			require.NotNil(t, row.TicketID)
			assert.Equal(t, "t-1", *row.TicketID)
		}
	})

	t.Run("admin-created tickets produce nothing", func(t *testing.T) {
		notifications := &fakeNotificationRepo{}
		svc := newNotificationService(notifications, profiles)

		err := svc.handleTicketCreated(context.Background(), events.Event{
			Type:    events.EventTicketCreated,
			Payload: events.TicketCreatedPayload{Title: "Laptop repair", NeedsApproval: false},
		})
		require.NoError(t, err)
		assert.Empty(t, notifications.rows)
	})

	t.Run("one failed write does not stop the fan-out", func(t *testing.T) {
		notifications := &fakeNotificationRepo{failUsers: map[string]error{
			"adm-1": errors.New("insert failed"),
		}}
		svc := newNotificationService(notifications, profiles)

		err := svc.handleTicketCreated(context.Background(), events.Event{
			Type:     events.EventTicketCreated,
			TicketID: "t-1",
			Payload:  events.TicketCreatedPayload{Title: "Laptop repair", NeedsApproval: true},
		})
		require.NoError(t, err)
		require.Len(t, notifications.rows, 1)
		assert.Equal(t, "adm-2", notifications.rows[0].UserID)
	})
}

func TestHandleStatusChanged(t *testing.T) {
	t.Run("assignment notifies the actor", func(t *testing.T) {
		notifications := &fakeNotificationRepo{}
		svc := newNotificationService(notifications, &fakeProfileRepo{})

		err := svc.handleStatusChanged(context.Background(), events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: "t-1",
			Actor:    events.Actor{ID: "tech-1", Role: domain.RoleTechnician},
			Payload: events.StatusChangedPayload{
				FromStatus: domain.StatusInQueue,
				ToStatus:   domain.StatusAssigned,
			},
		})
		require.NoError(t, err)
		require.Len(t, notifications.rows, 1)
		assert.Equal(t, "tech-1", notifications.rows[0].UserID)
		assert.Equal(t, "Ticket Assigned", notifications.rows[0].Title)
	})

	t.Run("other transitions are ignored", func(t *testing.T) {
		notifications := &fakeNotificationRepo{}
		svc := newNotificationService(notifications, &fakeProfileRepo{})

		err := svc.handleStatusChanged(context.Background(), events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: "t-1",
			Payload: events.StatusChangedPayload{
				FromStatus: domain.StatusAssigned,
				ToStatus:   domain.StatusInProgress,
			},
		})
		require.NoError(t, err)
		assert.Empty(t, notifications.rows)
	})
}

func TestNotificationListAndMarkRead(t *testing.T) {
	notifications := &fakeNotificationRepo{rows: []*domain.Notification{
		{ID: "n-1", UserID: "tech-1", Read: true},
		{ID: "n-2", UserID: "tech-1"},
		{ID: "n-3", UserID: "tech-2"},
	}}
	svc := newNotificationService(notifications, &fakeProfileRepo{})

	unread, err := svc.List(context.Background(), "tech-1", true, 20)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n-2", unread[0].ID)

	require.NoError(t, svc.MarkRead(context.Background(), "n-2", "tech-1"))

	// Another user's notification stays out of reach.
	err = svc.MarkRead(context.Background(), "n-3", "tech-1")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
