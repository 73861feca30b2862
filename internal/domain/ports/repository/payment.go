package repository

import (
	"context"
	"time"

	"training-enrollment-platform/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByReference(ctx context.Context, tx Tx, reference string) (*model.Payment, error)
	// FindLatestByApplication returns the most recently created payment of
	// the given type for an application, or ErrNotFound.
	FindLatestByApplication(ctx context.Context, tx Tx, applicationID string, typ model.PaymentType) (*model.Payment, error)
	// MarkCompleted transitions the payment to completed only if its current
	// status is not already completed, in a single conditional UPDATE. It
	// returns true when this caller won the transition.
	MarkCompleted(ctx context.Context, tx Tx, id string, providerRef string, raw map[string]interface{}, paidAt time.Time) (bool, error)
	SetProviderReference(ctx context.Context, tx Tx, id, providerRef string) error
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}

type ReceiptRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Receipt) error
	FindByPayment(ctx context.Context, tx Tx, paymentID string) (*model.Receipt, error)
}
