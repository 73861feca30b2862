//go:build !integration

// File: internal/infra/web/watch_handlers_test.go
package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/infra/logging"
	"training-enrollment-platform/internal/infra/sched"
	"training-enrollment-platform/internal/usecase"
)

// stubPaymentUC implements usecase.PaymentUseCase for handler tests.
type stubPaymentUC struct {
	mu    sync.Mutex
	finds []string
	store map[string]*model.Payment
}

func (s *stubPaymentUC) Initiate(ctx context.Context, in usecase.InitiateInput) (usecase.InitiateResult, error) {
	return usecase.InitiateResult{}, nil
}

func (s *stubPaymentUC) Find(ctx context.Context, traineeID, paymentID string) (*model.Payment, error) {
	s.mu.Lock()
	s.finds = append(s.finds, traineeID+"/"+paymentID)
	p, ok := s.store[paymentID]
	s.mu.Unlock()
	if !ok || p.TraineeID != traineeID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *stubPaymentUC) findCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.finds)
}

func newWatchServer(t *testing.T) (*Server, *stubPaymentUC) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	payments := &stubPaymentUC{store: map[string]*model.Payment{
		"pay-1": {ID: "pay-1", TraineeID: "trainee-1", Status: model.PaymentStatusPending},
	}}
	watcher := sched.NewWatcher(nil, nil, nil, time.Second, time.Second, time.Minute, &logger)
	return &Server{paymentUC: payments, watcher: watcher, log: &logger}, payments
}

// watchRequest builds a request carrying the chi payment id param and the
// authenticated trainee id.
func watchRequest(method, traineeID, paymentID string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/payments/"+paymentID+"/watch", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", paymentID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = logging.WithUserID(ctx, traineeID)
	return req.WithContext(ctx)
}

func TestWatchHandlers_OwnerScoped(t *testing.T) {
	t.Run("a foreign payment cannot be watched", func(t *testing.T) {
		s, _ := newWatchServer(t)
		rec := httptest.NewRecorder()

		s.handleWatchStart(rec, watchRequest(http.MethodPost, "trainee-2", "pay-1"))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for a foreign payment, got %d", rec.Code)
		}
		if state := s.watcher.State("pay-1"); state != sched.WatchIdle {
			t.Errorf("no watch may be started for a foreign payment, got state %q", state)
		}
	})

	t.Run("an unknown payment cannot be watched", func(t *testing.T) {
		s, _ := newWatchServer(t)
		rec := httptest.NewRecorder()

		s.handleWatchStart(rec, watchRequest(http.MethodPost, "trainee-1", "pay-404"))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for an unknown payment, got %d", rec.Code)
		}
	})

	t.Run("the owner can read the watch state", func(t *testing.T) {
		s, payments := newWatchServer(t)
		rec := httptest.NewRecorder()

		s.handleWatchState(rec, watchRequest(http.MethodGet, "trainee-1", "pay-1"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for the owner, got %d", rec.Code)
		}
		if payments.findCount() != 1 {
			t.Errorf("expected one ownership lookup, got %d", payments.findCount())
		}
	})

	t.Run("a foreign payment state reads as not found", func(t *testing.T) {
		s, _ := newWatchServer(t)
		rec := httptest.NewRecorder()

		s.handleWatchState(rec, watchRequest(http.MethodGet, "trainee-2", "pay-1"))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for a foreign payment, got %d", rec.Code)
		}
	})

	t.Run("only the owner can cancel a watch", func(t *testing.T) {
		s, _ := newWatchServer(t)
		rec := httptest.NewRecorder()

		s.handleWatchCancel(rec, watchRequest(http.MethodDelete, "trainee-2", "pay-1"))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for a foreign payment, got %d", rec.Code)
		}
	})
}
