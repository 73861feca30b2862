package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"training-enrollment-platform/internal/config"
	"training-enrollment-platform/internal/infra/sched"
	"training-enrollment-platform/internal/infra/ws"
	"training-enrollment-platform/internal/usecase"
)

// RateLimiter is the subset of the redis limiter webhooks need; nil disables
// burst control.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	paymentUC usecase.PaymentUseCase
	verifyUC  usecase.VerificationUseCase
	notifUC   usecase.NotificationUseCase
	watcher   *sched.Watcher
	hub       *ws.Hub
	auth      *AuthManager
	limiter   RateLimiter
	apiKey    string

	paystackSecret    string
	flutterwaveSecret string

	// baseCtx outlives individual requests; watcher goroutines hang off it so
	// an early client disconnect does not cancel a running watch.
	baseCtx context.Context

	httpServer *http.Server
	log        *zerolog.Logger
}

func NewServer(
	baseCtx context.Context,
	cfg *config.Config,
	paymentUC usecase.PaymentUseCase,
	verifyUC usecase.VerificationUseCase,
	notifUC usecase.NotificationUseCase,
	watcher *sched.Watcher,
	hub *ws.Hub,
	limiter RateLimiter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		paymentUC:         paymentUC,
		verifyUC:          verifyUC,
		notifUC:           notifUC,
		watcher:           watcher,
		hub:               hub,
		auth:              NewAuthManager(cfg.Auth.JWTSecret),
		limiter:           limiter,
		apiKey:            cfg.Auth.APIKey,
		paystackSecret:    cfg.Payment.Paystack.SecretKey,
		flutterwaveSecret: cfg.Payment.Flutterwave.WebhookSecret,
		baseCtx:           baseCtx,
		log:               logger,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/webhooks/paystack", s.handlePaystackWebhook)
	r.Post("/webhooks/flutterwave", s.handleFlutterwaveWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.traineeAuth)
			r.Post("/payments/initialize", s.handleInitializePayment)
			r.Post("/payments/{id}/watch", s.handleWatchStart)
			r.Delete("/payments/{id}/watch", s.handleWatchCancel)
			r.Get("/payments/{id}/watch", s.handleWatchState)
			r.Get("/notifications", s.handleListNotifications)
			r.Post("/notifications/{id}/read", s.handleMarkNotificationRead)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.apiKeyAuth)
			r.Post("/payments/verify", s.handleVerifyPayment)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.traineeAuth)
		r.Get("/ws", s.handleSubscribe)
	})

	return Chain(r, TraceID(), RequestLog(s.log), Recover(s.log))
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
