// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/adapter"
	"training-enrollment-platform/internal/domain/ports/repository"
	"training-enrollment-platform/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type InitiateInput struct {
	Provider      model.PaymentProvider
	PaymentType   model.PaymentType
	ApplicationID string
	TraineeID     string
	Email         string
	CallbackURL   string
}

type InitiateResult struct {
	AuthorizationURL string
	Reference        string
	PaymentID        string
}

type PaymentUseCase interface {
	// Initiate opens a checkout with the chosen provider and records the
	// pending payment; the returned URL is where the trainee is redirected.
	Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error)
	// Find loads a payment scoped to its owner; a foreign payment reads as
	// not found.
	Find(ctx context.Context, traineeID, paymentID string) (*model.Payment, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	apps     repository.ApplicationRepository
	programs repository.ProgramRepository
	gateways map[model.PaymentProvider]adapter.PaymentGateway
	currency string
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	apps repository.ApplicationRepository,
	programs repository.ProgramRepository,
	gateways map[model.PaymentProvider]adapter.PaymentGateway,
	currency string,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		payments: payments,
		apps:     apps,
		programs: programs,
		gateways: gateways,
		currency: currency,
		log:      logger,
	}
}

func (u *paymentUC) Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error) {
	if in.ApplicationID == "" || in.TraineeID == "" || in.Email == "" {
		return InitiateResult{}, domain.ErrInvalidArgument
	}
	if in.PaymentType != model.PaymentTypeApplicationFee && in.PaymentType != model.PaymentTypeRegistrationFee {
		return InitiateResult{}, domain.ErrInvalidArgument
	}
	gw, ok := u.gateways[in.Provider]
	if !ok {
		return InitiateResult{}, fmt.Errorf("provider %q: %w", in.Provider, domain.ErrInvalidArgument)
	}

	app, err := u.apps.FindByID(ctx, repository.NoTX, in.ApplicationID)
	if err != nil {
		return InitiateResult{}, err
	}
	if app.TraineeID != in.TraineeID {
		return InitiateResult{}, domain.ErrInvalidArgument
	}

	program, err := u.programs.FindByID(ctx, repository.NoTX, app.ProgramID)
	if err != nil {
		return InitiateResult{}, err
	}

	var amount int64
	switch in.PaymentType {
	case model.PaymentTypeApplicationFee:
		if app.ApplicationFeePaid {
			return InitiateResult{}, domain.ErrStateConflict
		}
		amount = program.ApplicationFeeAmt
	case model.PaymentTypeRegistrationFee:
		if app.RegistrationFeePaid {
			return InitiateResult{}, domain.ErrStateConflict
		}
		if app.Status != model.ApplicationStatusApproved || !app.ApplicationFeePaid {
			return InitiateResult{}, fmt.Errorf("application not ready for registration fee: %w", domain.ErrStateConflict)
		}
		amount = program.RegistrationFeeAmt
	}

	reference := fmt.Sprintf("TRX-%s", uuid.NewString())
	res, err := gw.Initialize(ctx, adapter.InitRequest{
		Amount:      amount,
		Currency:    u.currency,
		Email:       in.Email,
		Reference:   reference,
		CallbackURL: in.CallbackURL,
		Meta: map[string]interface{}{
			"application_id": in.ApplicationID,
			"payment_type":   string(in.PaymentType),
		},
	})
	if err != nil {
		metrics.PaymentInitTotal.WithLabelValues(gw.Name(), "error").Inc()
		return InitiateResult{}, fmt.Errorf("initialize with %s: %w", gw.Name(), err)
	}

	now := time.Now()
	p := &model.Payment{
		ID:                uuid.NewString(),
		ApplicationID:     in.ApplicationID,
		TraineeID:         in.TraineeID,
		Provider:          in.Provider,
		Type:              in.PaymentType,
		Amount:            amount,
		Currency:          u.currency,
		Reference:         reference,
		ProviderReference: res.ProviderReference,
		Status:            model.PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return InitiateResult{}, err
	}

	metrics.PaymentInitTotal.WithLabelValues(gw.Name(), "ok").Inc()
	u.log.Info().
		Str("payment_id", p.ID).
		Str("provider", gw.Name()).
		Str("payment_type", string(p.Type)).
		Int64("amount", amount).
		Msg("payment initiated")

	return InitiateResult{
		AuthorizationURL: res.AuthorizationURL,
		Reference:        reference,
		PaymentID:        p.ID,
	}, nil
}

func (u *paymentUC) Find(ctx context.Context, traineeID, paymentID string) (*model.Payment, error) {
	if traineeID == "" || paymentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	if p.TraineeID != traineeID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
