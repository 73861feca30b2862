package web

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/infra/metrics"
	"training-enrollment-platform/internal/infra/payment"
	red "training-enrollment-platform/internal/infra/redis"
	"training-enrollment-platform/internal/usecase"
)

const (
	webhookRateLimit  = 60
	webhookRateWindow = time.Minute
)

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

type flutterwaveEvent struct {
	Event string `json:"event"`
	Data  struct {
		TxRef string `json:"tx_ref"`
	} `json:"data"`
}

// handlePaystackWebhook authenticates and forwards Paystack deliveries.
// A validly signed, well-formed request is always acknowledged with 200,
// whatever downstream verification does: the orchestrator is idempotent and
// a 5xx here would only provoke a redelivery storm.
func (s *Server) handlePaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readWebhookBody(w, r, "paystack")
	if !ok {
		return
	}

	if s.paystackSecret == "" {
		metrics.WebhookRequests.WithLabelValues("paystack", "no_secret").Inc()
		s.log.Error().Msg("paystack webhook secret is not configured")
		http.Error(w, "Webhook not configured", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("X-Paystack-Signature")
	if sig == "" || !payment.VerifyPaystackSignature(s.paystackSecret, body, sig) {
		metrics.WebhookRequests.WithLabelValues("paystack", "bad_signature").Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var ev paystackEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.Data.Reference == "" {
		metrics.WebhookRequests.WithLabelValues("paystack", "bad_payload").Inc()
		http.Error(w, "Malformed payload", http.StatusBadRequest)
		return
	}

	metrics.WebhookRequests.WithLabelValues("paystack", "accepted").Inc()
	s.processWebhook(r, ev.Data.Reference, model.ProviderPaystack)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleFlutterwaveWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readWebhookBody(w, r, "flutterwave")
	if !ok {
		return
	}

	if s.flutterwaveSecret == "" {
		metrics.WebhookRequests.WithLabelValues("flutterwave", "no_secret").Inc()
		s.log.Error().Msg("flutterwave webhook secret is not configured")
		http.Error(w, "Webhook not configured", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Verif-Hash")
	if sig == "" || !payment.VerifyFlutterwaveSignature(s.flutterwaveSecret, body, sig) {
		metrics.WebhookRequests.WithLabelValues("flutterwave", "bad_signature").Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var ev flutterwaveEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.Data.TxRef == "" {
		metrics.WebhookRequests.WithLabelValues("flutterwave", "bad_payload").Inc()
		http.Error(w, "Malformed payload", http.StatusBadRequest)
		return
	}

	metrics.WebhookRequests.WithLabelValues("flutterwave", "accepted").Inc()
	s.processWebhook(r, ev.Data.TxRef, model.ProviderFlutterwave)
	w.WriteHeader(http.StatusOK)
}

// readWebhookBody applies the burst limiter and reads the exact raw bytes the
// signature covers.
func (s *Server) readWebhookBody(w http.ResponseWriter, r *http.Request, provider string) ([]byte, bool) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(r.Context(), red.WebhookKey(provider, r.RemoteAddr), webhookRateLimit, webhookRateWindow)
		if err == nil && !allowed {
			metrics.WebhookRequests.WithLabelValues(provider, "rate_limited").Inc()
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return nil, false
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Malformed payload", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// processWebhook hands the reference to the orchestrator. Internal
// verification failures are logged, never surfaced to the provider.
func (s *Server) processWebhook(r *http.Request, reference string, provider model.PaymentProvider) {
	out, err := s.verifyUC.Verify(r.Context(), usecase.VerifyInput{
		Reference: reference,
		Provider:  provider,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("reference", reference).Str("provider", string(provider)).Msg("webhook verification errored")
		return
	}
	if !out.Success {
		s.log.Info().Str("reference", reference).Str("reason", out.Error).Msg("webhook verification unsuccessful")
	}
}
