package repository

import (
	"context"

	"training-enrollment-platform/internal/domain/model"
)

type ApplicationRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Application) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Application, error)
	// SetApplicationFeePaid is an idempotent flag set.
	SetApplicationFeePaid(ctx context.Context, tx Tx, id string) error
	// SetRegistrationComplete sets the registration-fee flag and assigns the
	// registration number in one statement.
	SetRegistrationComplete(ctx context.Context, tx Tx, id, registrationNumber string) error
}

type ProgramRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Program) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Program, error)
	// IncrementEnrolled bumps enrolled_count by exactly one.
	IncrementEnrolled(ctx context.Context, tx Tx, id string) error
}

type TraineeRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Trainee, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Trainee, error)
}
