// File: internal/usecase/verification_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/adapter"
	"training-enrollment-platform/internal/domain/ports/repository"
	"training-enrollment-platform/internal/infra/metrics"
)

// Compile-time check
var _ VerificationUseCase = (*verificationUC)(nil)

// VerifyInput identifies the payment to reconcile. At least one of PaymentID
// or Reference is required; Provider is optional and resolved from the record.
type VerifyInput struct {
	PaymentID string
	Reference string
	Provider  model.PaymentProvider
}

// VerifyOutcome is the structured result every entry point receives. Gateway
// failures are carried here, not as errors: they are retryable and must not
// abort a webhook acknowledgement.
type VerifyOutcome struct {
	Success          bool
	Status           string // "completed" | "failed"
	AlreadyProcessed bool
	PaymentType      model.PaymentType
	ReceiptNumber    string
	Error            string
}

// VerificationUseCase turns a gateway confirmation into durable, exactly-once
// state changes. Webhooks, the manual verify endpoint, and the payment watcher
// all converge here; it tolerates duplicate and concurrent invocations for the
// same payment.
type VerificationUseCase interface {
	Verify(ctx context.Context, in VerifyInput) (VerifyOutcome, error)
}

type verificationUC struct {
	payments      repository.PaymentRepository
	apps          repository.ApplicationRepository
	programs      repository.ProgramRepository
	receipts      repository.ReceiptRepository
	notifications repository.NotificationRepository
	trainees      repository.TraineeRepository
	gateways      map[model.PaymentProvider]adapter.PaymentGateway
	pusher        adapter.Pusher
	mailer        adapter.Mailer
	tm            repository.TransactionManager
	log           *zerolog.Logger
}

func NewVerificationUseCase(
	payments repository.PaymentRepository,
	apps repository.ApplicationRepository,
	programs repository.ProgramRepository,
	receipts repository.ReceiptRepository,
	notifications repository.NotificationRepository,
	trainees repository.TraineeRepository,
	gateways map[model.PaymentProvider]adapter.PaymentGateway,
	pusher adapter.Pusher,
	mailer adapter.Mailer,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *verificationUC {
	return &verificationUC{
		payments:      payments,
		apps:          apps,
		programs:      programs,
		receipts:      receipts,
		notifications: notifications,
		trainees:      trainees,
		gateways:      gateways,
		pusher:        pusher,
		mailer:        mailer,
		tm:            tm,
		log:           logger,
	}
}

func (u *verificationUC) Verify(ctx context.Context, in VerifyInput) (VerifyOutcome, error) {
	start := time.Now()
	out, err := u.verify(ctx, in)
	switch {
	case err != nil:
		reason := "unknown"
		if errors.Is(err, domain.ErrNotFound) {
			reason = "not_found"
		} else if errors.Is(err, domain.ErrOperationFailed) {
			reason = "db_error"
		}
		metrics.VerifyRequests.WithLabelValues("fail", reason).Inc()
		metrics.VerifyDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
	case out.AlreadyProcessed:
		metrics.VerifyRequests.WithLabelValues("already_processed", "").Inc()
		metrics.VerifyDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	case out.Success:
		metrics.VerifyRequests.WithLabelValues("ok", "").Inc()
		metrics.VerifyDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	default:
		metrics.VerifyRequests.WithLabelValues("fail", "gateway_declined").Inc()
		metrics.VerifyDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
	}
	return out, err
}

func (u *verificationUC) verify(ctx context.Context, in VerifyInput) (VerifyOutcome, error) {
	if in.PaymentID == "" && in.Reference == "" {
		return VerifyOutcome{}, domain.ErrInvalidArgument
	}

	p, err := u.loadPayment(ctx, in)
	if err != nil {
		return VerifyOutcome{}, err
	}

	// Idempotency short-circuit: an already-completed payment is a successful
	// no-op regardless of who asks or how often.
	if p.Completed() {
		return u.alreadyProcessed(ctx, p), nil
	}

	// Resolve missing inputs from the record; callers may supply partial info.
	reference := p.ProviderReference
	if reference == "" {
		reference = p.Reference
	}
	gw, ok := u.gateways[p.Provider]
	if !ok {
		return VerifyOutcome{}, fmt.Errorf("gateway for provider %q: %w", p.Provider, domain.ErrConfigMissing)
	}

	res, err := gw.Verify(ctx, reference)
	if err != nil {
		// Transport failures are transient; the payment stays pending and a
		// later webhook redelivery or watcher tick can still complete it.
		u.log.Warn().Err(err).Str("payment_id", p.ID).Str("provider", gw.Name()).Msg("gateway verification error")
		return VerifyOutcome{Success: false, Status: "failed", Error: "gateway verification failed"}, nil
	}
	if !res.Success {
		u.log.Info().Str("payment_id", p.ID).Str("reason", res.Reason).Msg("gateway declined verification")
		return VerifyOutcome{Success: false, Status: "failed", Error: res.Reason}, nil
	}

	outcome, notification, err := u.finalize(ctx, p, reference, res.Raw)
	if err != nil {
		return VerifyOutcome{}, err
	}

	// Best-effort side effects. Authoritative state is committed; a failed
	// push or mail is logged and never rolls anything back.
	if notification != nil {
		u.pusher.Push(p.TraineeID, "notification", notification)
		u.sendConfirmationMail(ctx, p, outcome)
	}
	return outcome, nil
}

func (u *verificationUC) loadPayment(ctx context.Context, in VerifyInput) (*model.Payment, error) {
	if in.PaymentID != "" {
		return u.payments.FindByID(ctx, repository.NoTX, in.PaymentID)
	}
	return u.payments.FindByReference(ctx, repository.NoTX, in.Reference)
}

func (u *verificationUC) alreadyProcessed(ctx context.Context, p *model.Payment) VerifyOutcome {
	out := VerifyOutcome{
		Success:          true,
		Status:           string(model.PaymentStatusCompleted),
		AlreadyProcessed: true,
		PaymentType:      p.Type,
	}
	if rc, err := u.receipts.FindByPayment(ctx, repository.NoTX, p.ID); err == nil {
		out.ReceiptNumber = rc.ReceiptNumber
	}
	return out
}

// finalize performs the guarded transition and everything derived from it in
// one transaction. Only the caller whose conditional UPDATE hits a row runs
// the branch; every concurrent loser reports already_processed.
func (u *verificationUC) finalize(ctx context.Context, p *model.Payment, reference string, raw map[string]interface{}) (VerifyOutcome, *model.Notification, error) {
	var (
		outcome      VerifyOutcome
		notification *model.Notification
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		now := time.Now()
		won, err := u.payments.MarkCompleted(ctx, tx, p.ID, reference, raw, now)
		if err != nil {
			return err
		}
		if !won {
			outcome = VerifyOutcome{
				Success:          true,
				Status:           string(model.PaymentStatusCompleted),
				AlreadyProcessed: true,
				PaymentType:      p.Type,
			}
			return nil
		}

		app, err := u.apps.FindByID(ctx, tx, p.ApplicationID)
		if err != nil {
			return err
		}

		switch p.Type {
		case model.PaymentTypeApplicationFee:
			if err := u.apps.SetApplicationFeePaid(ctx, tx, app.ID); err != nil {
				return err
			}
			notification = newNotification(p.TraineeID, model.NotificationPaymentConfirmed,
				"Payment confirmed",
				"Your application fee payment has been confirmed.",
				map[string]interface{}{"application_id": app.ID, "payment_id": p.ID})

		case model.PaymentTypeRegistrationFee:
			if err := u.assignRegistrationNumber(ctx, tx, app.ID, now); err != nil {
				return err
			}
			if err := u.programs.IncrementEnrolled(ctx, tx, app.ProgramID); err != nil {
				return err
			}
			notification = newNotification(p.TraineeID, model.NotificationRegistrationComplete,
				"Registration complete",
				"Your registration fee payment has been confirmed. Welcome aboard!",
				map[string]interface{}{"application_id": app.ID, "payment_id": p.ID})
		}

		if notification != nil {
			if err := u.notifications.Save(ctx, tx, notification); err != nil {
				return err
			}
		}

		receiptNumber, err := u.createReceipt(ctx, tx, p, now)
		if err != nil {
			return err
		}

		outcome = VerifyOutcome{
			Success:       true,
			Status:        string(model.PaymentStatusCompleted),
			PaymentType:   p.Type,
			ReceiptNumber: receiptNumber,
		}
		return nil
	})
	if err != nil {
		return VerifyOutcome{}, nil, err
	}
	if outcome.AlreadyProcessed {
		return outcome, nil, nil
	}
	u.log.Info().
		Str("payment_id", p.ID).
		Str("payment_type", string(p.Type)).
		Str("receipt_number", outcome.ReceiptNumber).
		Msg("payment finalized")
	return outcome, notification, nil
}

// Each attempt runs under its own savepoint: a unique violation aborts the
// enclosing Postgres transaction, so rewinding to the savepoint is the only
// way a regenerated number can still be written by the same winner.
func (u *verificationUC) assignRegistrationNumber(ctx context.Context, tx repository.Tx, applicationID string, now time.Time) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = u.tm.WithinSavepoint(ctx, tx, func(tx repository.Tx) error {
			return u.apps.SetRegistrationComplete(ctx, tx, applicationID, newRegistrationNumber(now))
		})
		if !errors.Is(err, domain.ErrUniqueViolation) {
			return err
		}
	}
	return err
}

func (u *verificationUC) createReceipt(ctx context.Context, tx repository.Tx, p *model.Payment, now time.Time) (string, error) {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		rc := &model.Receipt{
			ID:            newID(),
			PaymentID:     p.ID,
			TraineeID:     p.TraineeID,
			ReceiptNumber: newReceiptNumber(now),
			CreatedAt:     now,
		}
		err = u.tm.WithinSavepoint(ctx, tx, func(tx repository.Tx) error {
			return u.receipts.Save(ctx, tx, rc)
		})
		if err == nil {
			return rc.ReceiptNumber, nil
		}
		if !errors.Is(err, domain.ErrUniqueViolation) {
			return "", err
		}
	}
	return "", err
}

func (u *verificationUC) sendConfirmationMail(ctx context.Context, p *model.Payment, out VerifyOutcome) {
	trainee, err := u.trainees.FindByID(ctx, repository.NoTX, p.TraineeID)
	if err != nil {
		u.log.Warn().Err(err).Str("trainee_id", p.TraineeID).Msg("trainee lookup for mail failed")
		return
	}

	subject := "Payment confirmed"
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your %s payment of %d %s was confirmed. Receipt: %s.</p>",
		trainee.FirstName, p.Type, p.Amount, p.Currency, out.ReceiptNumber)
	if p.Type == model.PaymentTypeRegistrationFee {
		subject = "Registration complete"
	}

	if err := u.mailer.Send(trainee.Email, subject, body); err != nil {
		metrics.MailTotal.WithLabelValues("error").Inc()
		u.log.Warn().Err(err).Str("payment_id", p.ID).Msg("confirmation mail failed")
		return
	}
	metrics.MailTotal.WithLabelValues("sent").Inc()
}
