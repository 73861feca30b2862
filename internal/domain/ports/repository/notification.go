package repository

import (
	"context"

	"training-enrollment-platform/internal/domain/model"
)

type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Notification, error)
	// MarkRead flips the read flag; only the owner may do so. Returns
	// ErrNotFound when the row does not exist or belongs to someone else.
	MarkRead(ctx context.Context, tx Tx, userID, id string) error
	CountUnread(ctx context.Context, tx Tx, userID string) (int, error)
}
