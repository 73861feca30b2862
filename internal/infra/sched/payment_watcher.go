package sched

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/repository"
	"training-enrollment-platform/internal/infra/metrics"
	"training-enrollment-platform/internal/usecase"
)

// WatchState is the lifecycle of one bounded verification loop.
type WatchState string

const (
	WatchIdle      WatchState = "idle"
	WatchActive    WatchState = "active"
	WatchResolved  WatchState = "resolved"
	WatchTimedOut  WatchState = "timed_out"
	WatchCancelled WatchState = "cancelled"
)

type watch struct {
	state  WatchState
	cancel context.CancelFunc
}

// Watcher closes the gap between a gateway redirect and a delayed or lost
// webhook: after initialization it re-attempts verification on a fixed
// interval until the payment resolves, the watch is cancelled, or the
// deadline passes. One watch per payment; every timer is owned by its
// goroutine and released deterministically on all exit paths.
type Watcher struct {
	payments repository.PaymentRepository
	verifier usecase.VerificationUseCase
	notifier usecase.NotificationUseCase
	interval time.Duration
	deadline time.Duration
	retain   time.Duration
	log      *zerolog.Logger

	mu      sync.Mutex
	watches map[string]*watch
}

func NewWatcher(
	payments repository.PaymentRepository,
	verifier usecase.VerificationUseCase,
	notifier usecase.NotificationUseCase,
	interval, deadline, retain time.Duration,
	logger *zerolog.Logger,
) *Watcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if deadline <= 0 {
		deadline = 120 * time.Second
	}
	if retain <= 0 {
		retain = 5 * time.Minute
	}
	return &Watcher{
		payments: payments,
		verifier: verifier,
		notifier: notifier,
		interval: interval,
		deadline: deadline,
		retain:   retain,
		log:      logger,
		watches:  make(map[string]*watch),
	}
}

// Track starts (or reports) the watch for one payment. Starting an already
// active watch is a no-op returning the current state.
func (w *Watcher) Track(parentCtx context.Context, paymentID, traineeID string) WatchState {
	w.mu.Lock()
	if existing, ok := w.watches[paymentID]; ok && existing.state == WatchActive {
		w.mu.Unlock()
		return WatchActive
	}
	ctx, cancel := context.WithCancel(parentCtx)
	w.watches[paymentID] = &watch{state: WatchActive, cancel: cancel}
	w.mu.Unlock()

	go w.run(ctx, paymentID, traineeID)
	return WatchActive
}

// Cancel stops an active watch. Idempotent; cancelling a finished or unknown
// watch does nothing.
func (w *Watcher) Cancel(paymentID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if entry, ok := w.watches[paymentID]; ok && entry.state == WatchActive {
		entry.cancel()
	}
}

// State reports the watch state; unknown payments are idle.
func (w *Watcher) State(paymentID string) WatchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if entry, ok := w.watches[paymentID]; ok {
		return entry.state
	}
	return WatchIdle
}

func (w *Watcher) run(ctx context.Context, paymentID, traineeID string) {
	ticker := time.NewTicker(w.interval)
	timeout := time.NewTimer(w.deadline)
	defer func() {
		ticker.Stop()
		timeout.Stop()
	}()

	// First attempt immediately; webhooks often beat the redirect but the
	// reverse is just as common.
	if w.attempt(ctx, paymentID) {
		w.finish(paymentID, WatchResolved)
		return
	}

	for {
		select {
		case <-ctx.Done():
			w.finish(paymentID, WatchCancelled)
			return
		case <-timeout.C:
			w.finish(paymentID, WatchTimedOut)
			w.notifyTimeout(paymentID, traineeID)
			return
		case <-ticker.C:
			if w.attempt(ctx, paymentID) {
				w.finish(paymentID, WatchResolved)
				return
			}
		}
	}
}

// attempt returns true once the payment is completed.
func (w *Watcher) attempt(ctx context.Context, paymentID string) bool {
	p, err := w.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		w.log.Warn().Err(err).Str("payment_id", paymentID).Msg("watcher: load payment failed")
		return false
	}
	if p.Completed() {
		return true
	}
	// No reference yet means initialization hasn't finished assigning one;
	// skip this tick without error.
	if p.ProviderReference == "" && p.Reference == "" {
		return false
	}

	out, err := w.verifier.Verify(ctx, usecase.VerifyInput{PaymentID: paymentID})
	if err != nil {
		w.log.Warn().Err(err).Str("payment_id", paymentID).Msg("watcher: verification attempt failed")
		return false
	}
	return out.Success
}

// finish records the terminal state and schedules eviction so the registry
// does not grow with every payment ever watched. The entry stays queryable
// for the retain window; a re-tracked payment owns a fresh entry, which the
// pointer comparison leaves alone.
func (w *Watcher) finish(paymentID string, s WatchState) {
	w.mu.Lock()
	entry, ok := w.watches[paymentID]
	if ok {
		entry.state = s
	}
	w.mu.Unlock()

	metrics.WatcherOutcomes.WithLabelValues(string(s)).Inc()
	w.log.Info().Str("payment_id", paymentID).Str("state", string(s)).Msg("watcher finished")

	if !ok {
		return
	}
	time.AfterFunc(w.retain, func() {
		w.mu.Lock()
		if w.watches[paymentID] == entry {
			delete(w.watches, paymentID)
		}
		w.mu.Unlock()
	})
}

// notifyTimeout surfaces the single terminal, user-visible message the
// bounded retry window ends with.
func (w *Watcher) notifyTimeout(paymentID, traineeID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := w.notifier.Notify(ctx, traineeID, model.NotificationPaymentTimeout,
		"Payment verification timed out",
		"We could not confirm your payment yet. If you were charged, it will be reconciled automatically; otherwise please try again.",
		map[string]interface{}{"payment_id": paymentID})
	if err != nil {
		w.log.Warn().Err(err).Str("payment_id", paymentID).Msg("watcher: timeout notification failed")
	}
}
