package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"training-enrollment-platform/internal/domain"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/infra/logging"
	"training-enrollment-platform/internal/infra/ws"
	"training-enrollment-platform/internal/usecase"
)

type initializeRequest struct {
	Provider      string `json:"provider"`
	PaymentType   string `json:"payment_type"`
	ApplicationID string `json:"application_id"`
	Email         string `json:"email"`
	CallbackURL   string `json:"callback_url"`
}

type initializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	PaymentID        string `json:"payment_id"`
}

func (s *Server) handleInitializePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req initializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.paymentUC.Initiate(ctx, usecase.InitiateInput{
		Provider:      model.PaymentProvider(req.Provider),
		PaymentType:   model.PaymentType(req.PaymentType),
		ApplicationID: req.ApplicationID,
		TraineeID:     logging.UserID(ctx),
		Email:         req.Email,
		CallbackURL:   req.CallbackURL,
	})
	if err != nil {
		writeDomainError(w, err, "Failed to initialize payment")
		return
	}

	// Cover the window before any webhook arrives.
	s.watcher.Track(s.baseCtx, res.PaymentID, logging.UserID(ctx))

	writeJSON(w, http.StatusCreated, initializeResponse{
		AuthorizationURL: res.AuthorizationURL,
		Reference:        res.Reference,
		PaymentID:        res.PaymentID,
	})
}

type verifyRequest struct {
	Reference string `json:"reference"`
	Provider  string `json:"provider"`
	PaymentID string `json:"payment_id"`
}

type verifyResponse struct {
	Success          bool   `json:"success"`
	Status           string `json:"status"`
	PaymentType      string `json:"payment_type,omitempty"`
	ReceiptNumber    string `json:"receipt_number,omitempty"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
	Error            string `json:"error,omitempty"`
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reference == "" && req.PaymentID == "" {
		http.Error(w, "reference or payment_id is required", http.StatusBadRequest)
		return
	}

	out, err := s.verifyUC.Verify(r.Context(), usecase.VerifyInput{
		PaymentID: req.PaymentID,
		Reference: req.Reference,
		Provider:  model.PaymentProvider(req.Provider),
	})
	if err != nil {
		writeDomainError(w, err, "Verification failed")
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Success:          out.Success,
		Status:           out.Status,
		PaymentType:      string(out.PaymentType),
		ReceiptNumber:    out.ReceiptNumber,
		AlreadyProcessed: out.AlreadyProcessed,
		Error:            out.Error,
	})
}

// ownedPaymentID resolves the route's payment id for the authenticated
// trainee. Payments of other trainees read as not found, so watches can only
// be started, cancelled or inspected by their owner.
func (s *Server) ownedPaymentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	paymentID := chi.URLParam(r, "id")
	if _, err := s.paymentUC.Find(r.Context(), logging.UserID(r.Context()), paymentID); err != nil {
		writeDomainError(w, err, "Failed to load payment")
		return "", false
	}
	return paymentID, true
}

func (s *Server) handleWatchStart(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := s.ownedPaymentID(w, r)
	if !ok {
		return
	}
	state := s.watcher.Track(s.baseCtx, paymentID, logging.UserID(r.Context()))
	writeJSON(w, http.StatusAccepted, map[string]string{"state": string(state)})
}

func (s *Server) handleWatchCancel(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := s.ownedPaymentID(w, r)
	if !ok {
		return
	}
	s.watcher.Cancel(paymentID)
	writeJSON(w, http.StatusOK, map[string]string{"state": "cancelled"})
}

func (s *Server) handleWatchState(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := s.ownedPaymentID(w, r)
	if !ok {
		return
	}
	state := s.watcher.State(paymentID)
	writeJSON(w, http.StatusOK, map[string]string{"state": string(state)})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := s.notifUC.ListForUser(ctx, logging.UserID(ctx), limit)
	if err != nil {
		writeDomainError(w, err, "Failed to list notifications")
		return
	}
	unread, err := s.notifUC.UnreadCount(ctx, logging.UserID(ctx))
	if err != nil {
		writeDomainError(w, err, "Failed to count notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
		"unread":        unread,
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.notifUC.MarkRead(ctx, logging.UserID(ctx), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, "Failed to mark notification read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ws.Serve(s.hub, s.log, w, r, logging.UserID(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrStateConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrConfigMissing):
		http.Error(w, "Service misconfigured", http.StatusInternalServerError)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
