// File: internal/usecase/notification_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/adapter"
	"training-enrollment-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

// NotificationUseCase persists user-facing events and fans them out over the
// live-update channels. The persisted row is the source of truth; the push is
// only a refresh hint and may be missed by clients with no open channel.
type NotificationUseCase interface {
	Persist(ctx context.Context, userID string, kind model.NotificationKind, title, message string, meta map[string]interface{}) (*model.Notification, error)
	// Notify persists and then pushes; the push never fails the call.
	Notify(ctx context.Context, userID string, kind model.NotificationKind, title, message string, meta map[string]interface{}) (*model.Notification, error)
	// Broadcast persists one notification per known trainee and fans out to
	// each. O(number of trainees); acceptable at this system's scale.
	Broadcast(ctx context.Context, kind model.NotificationKind, title, message string) (int, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type notificationUC struct {
	notifications repository.NotificationRepository
	trainees      repository.TraineeRepository
	pusher        adapter.Pusher
	log           *zerolog.Logger
}

func NewNotificationUseCase(
	notifications repository.NotificationRepository,
	trainees repository.TraineeRepository,
	pusher adapter.Pusher,
	logger *zerolog.Logger,
) *notificationUC {
	return &notificationUC{
		notifications: notifications,
		trainees:      trainees,
		pusher:        pusher,
		log:           logger,
	}
}

func newID() string { return ulid.Make().String() }

func newNotification(userID string, kind model.NotificationKind, title, message string, meta map[string]interface{}) *model.Notification {
	return &model.Notification{
		ID:        newID(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Meta:      meta,
		CreatedAt: time.Now(),
	}
}

func (n *notificationUC) Persist(ctx context.Context, userID string, kind model.NotificationKind, title, message string, meta map[string]interface{}) (*model.Notification, error) {
	note := newNotification(userID, kind, title, message, meta)
	if err := n.notifications.Save(ctx, repository.NoTX, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (n *notificationUC) Notify(ctx context.Context, userID string, kind model.NotificationKind, title, message string, meta map[string]interface{}) (*model.Notification, error) {
	note, err := n.Persist(ctx, userID, kind, title, message, meta)
	if err != nil {
		return nil, err
	}
	n.pusher.Push(userID, "notification", note)
	return note, nil
}

func (n *notificationUC) Broadcast(ctx context.Context, kind model.NotificationKind, title, message string) (int, error) {
	trainees, err := n.trainees.ListAll(ctx, repository.NoTX)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, t := range trainees {
		if _, err := n.Notify(ctx, t.ID, kind, title, message, nil); err != nil {
			// Keep going; a failed row for one user must not starve the rest.
			n.log.Warn().Err(err).Str("user_id", t.ID).Msg("broadcast notification failed")
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *notificationUC) ListForUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	return n.notifications.ListByUser(ctx, repository.NoTX, userID, limit)
}

func (n *notificationUC) MarkRead(ctx context.Context, userID, id string) error {
	return n.notifications.MarkRead(ctx, repository.NoTX, userID, id)
}

func (n *notificationUC) UnreadCount(ctx context.Context, userID string) (int, error) {
	return n.notifications.CountUnread(ctx, repository.NoTX, userID)
}
