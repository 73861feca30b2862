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

var _ repository.ProgramRepository = (*programRepo)(nil)

type programRepo struct{ pool *pgxpool.Pool }

func NewProgramRepo(pool *pgxpool.Pool) *programRepo {
	return &programRepo{pool: pool}
}

const programColumns = `id, name, description, application_fee_amount, registration_fee_amount, capacity, enrolled_count, created_at, updated_at`

func scanProgram(row pgx.Row) (*model.Program, error) {
	p := &model.Program{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ApplicationFeeAmt, &p.RegistrationFeeAmt, &p.Capacity, &p.EnrolledCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *programRepo) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	const q = `
INSERT INTO programs (
  id, name, description, application_fee_amount, registration_fee_amount, capacity, enrolled_count, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
) ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, application_fee_amount=$4, registration_fee_amount=$5, capacity=$6, updated_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Description, p.ApplicationFeeAmt, p.RegistrationFeeAmt, p.Capacity, p.EnrolledCount, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *programRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	q := `SELECT ` + programColumns + ` FROM programs WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanProgram(row)
}

func (r *programRepo) IncrementEnrolled(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE programs SET enrolled_count = enrolled_count + 1, updated_at=NOW() WHERE id=$1;`
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
