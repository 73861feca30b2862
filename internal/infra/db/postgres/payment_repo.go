package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, application_id, trainee_id, provider, payment_type, amount, currency, reference, provider_reference, status, raw, created_at, updated_at, paid_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var providerRef *string
	if err := row.Scan(&p.ID, &p.ApplicationID, &p.TraineeID, &p.Provider, &p.Type, &p.Amount, &p.Currency, &p.Reference, &providerRef, &p.Status, &p.Raw, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if providerRef != nil {
		p.ProviderReference = *providerRef
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, application_id, trainee_id, provider, payment_type, amount, currency, reference, provider_reference, status, raw, created_at, updated_at, paid_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
) ON CONFLICT (id) DO UPDATE SET
  provider_reference=$9, status=$10, raw=$11, updated_at=$13, paid_at=$14;`

	var providerRef *string
	if p.ProviderReference != "" {
		providerRef = &p.ProviderReference
	}
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.ApplicationID, p.TraineeID, p.Provider, p.Type, p.Amount, p.Currency, p.Reference, providerRef, p.Status, p.Raw, p.CreatedAt, p.UpdatedAt, p.PaidAt)
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

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	// Callers may hold either our reference or the provider's; match both.
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE reference=$1 OR provider_reference=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, reference)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindLatestByApplication(ctx context.Context, tx repository.Tx, applicationID string, typ model.PaymentType) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE application_id=$1 AND payment_type=$2 ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, applicationID, typ)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// MarkCompleted atomically transitions the payment to completed. The status
// guard closes the race between concurrent verifiers: only one caller ever
// sees RowsAffected()==1 for a given payment.
func (r *paymentRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id string, providerRef string, raw map[string]interface{}, paidAt time.Time) (bool, error) {
	const q = `
UPDATE payments
   SET status = 'completed',
       provider_reference = COALESCE(NULLIF($2, ''), provider_reference),
       raw = $3,
       paid_at = $4,
       updated_at = NOW()
 WHERE id = $1
   AND status <> 'completed';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, providerRef, raw, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) SetProviderReference(ctx context.Context, tx repository.Tx, id, providerRef string) error {
	const q = `UPDATE payments SET provider_reference=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, providerRef)
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

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
