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

var _ repository.TraineeRepository = (*traineeRepo)(nil)

// traineeRepo reads the trainee table owned by the auth collaborator.
type traineeRepo struct{ pool *pgxpool.Pool }

func NewTraineeRepo(pool *pgxpool.Pool) *traineeRepo {
	return &traineeRepo{pool: pool}
}

const traineeColumns = `id, email, first_name, last_name, registered_at`

func scanTrainee(row pgx.Row) (*model.Trainee, error) {
	t := &model.Trainee{}
	if err := row.Scan(&t.ID, &t.Email, &t.FirstName, &t.LastName, &t.RegisteredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *traineeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Trainee, error) {
	q := `SELECT ` + traineeColumns + ` FROM trainees WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTrainee(row)
}

func (r *traineeRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Trainee, error) {
	q := `SELECT ` + traineeColumns + ` FROM trainees ORDER BY registered_at;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Trainee
	for rows.Next() {
		t, err := scanTrainee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
