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

var _ repository.ApplicationRepository = (*applicationRepo)(nil)

type applicationRepo struct{ pool *pgxpool.Pool }

func NewApplicationRepo(pool *pgxpool.Pool) *applicationRepo {
	return &applicationRepo{pool: pool}
}

const applicationColumns = `id, trainee_id, program_id, status, application_fee_paid, registration_fee_paid, registration_number, admin_notes, created_at, updated_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	a := &model.Application{}
	if err := row.Scan(&a.ID, &a.TraineeID, &a.ProgramID, &a.Status, &a.ApplicationFeePaid, &a.RegistrationFeePaid, &a.RegistrationNumber, &a.AdminNotes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}

func (r *applicationRepo) Save(ctx context.Context, tx repository.Tx, a *model.Application) error {
	const q = `
INSERT INTO applications (
  id, trainee_id, program_id, status, application_fee_paid, registration_fee_paid, registration_number, admin_notes, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  status=$4, application_fee_paid=$5, registration_fee_paid=$6, registration_number=$7, admin_notes=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.TraineeID, a.ProgramID, a.Status, a.ApplicationFeePaid, a.RegistrationFeePaid, a.RegistrationNumber, a.AdminNotes, a.CreatedAt, a.UpdatedAt)
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

func (r *applicationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanApplication(row)
}

func (r *applicationRepo) SetApplicationFeePaid(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE applications SET application_fee_paid=TRUE, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) SetRegistrationComplete(ctx context.Context, tx repository.Tx, id, registrationNumber string) error {
	const q = `UPDATE applications SET registration_fee_paid=TRUE, registration_number=$2, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, registrationNumber)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		if isUniqueViolation(err) {
			return domain.ErrUniqueViolation
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
