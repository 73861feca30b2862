package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/repository"
)

var _ repository.ReceiptRepository = (*receiptRepo)(nil)

type receiptRepo struct{ pool *pgxpool.Pool }

func NewReceiptRepo(pool *pgxpool.Pool) *receiptRepo {
	return &receiptRepo{pool: pool}
}

func (r *receiptRepo) Save(ctx context.Context, tx repository.Tx, rc *model.Receipt) error {
	// Uniqueness of payment_id and receipt_number is enforced by the table
	// constraints; violations surface as ErrUniqueViolation for the caller
	// to retry with a fresh number.
	const q = `
INSERT INTO receipts (id, payment_id, trainee_id, receipt_number, created_at)
VALUES ($1,$2,$3,$4,$5);`

	_, err := execSQL(ctx, r.pool, tx, q, rc.ID, rc.PaymentID, rc.TraineeID, rc.ReceiptNumber, rc.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		if isUniqueViolation(err) {
			return domain.ErrUniqueViolation
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *receiptRepo) FindByPayment(ctx context.Context, tx repository.Tx, paymentID string) (*model.Receipt, error) {
	const q = `SELECT id, payment_id, trainee_id, receipt_number, created_at FROM receipts WHERE payment_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	rc := &model.Receipt{}
	if err := row.Scan(&rc.ID, &rc.PaymentID, &rc.TraineeID, &rc.ReceiptNumber, &rc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rc, nil
}
