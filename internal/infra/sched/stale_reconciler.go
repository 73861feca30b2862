package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain/ports/repository"
	"training-enrollment-platform/internal/usecase"
)

// StaleReconciler periodically scans for stale pending payments and tries to
// finalize them through the orchestrator. This covers webhooks that never
// arrived and watchers that timed out before the provider settled.
type StaleReconciler struct {
	verifier   usecase.VerificationUseCase
	payments   repository.PaymentRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewStaleReconciler(verifier usecase.VerificationUseCase, payments repository.PaymentRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *StaleReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &StaleReconciler{
		verifier:   verifier,
		payments:   payments,
		interval:   interval,
		staleAfter: staleAfter,
		log:        logger,
	}
}

func (w *StaleReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *StaleReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Warn().Err(err).Msg("stale-reconciler: list pending failed")
		return
	}
	for _, p := range pending {
		if p.ProviderReference == "" && p.Reference == "" {
			continue
		}
		out, err := w.verifier.Verify(ctx, usecase.VerifyInput{PaymentID: p.ID})
		if err != nil {
			w.log.Warn().Err(err).Str("payment_id", p.ID).Msg("stale-reconciler: verify failed")
			continue
		}
		if out.Success && !out.AlreadyProcessed {
			w.log.Info().Str("payment_id", p.ID).Msg("stale-reconciler: reconciled")
		}
	}
}
