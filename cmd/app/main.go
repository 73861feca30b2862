// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"training-enrollment-platform/internal/config"
	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/adapter"
	"training-enrollment-platform/internal/domain/ports/repository"
	pg "training-enrollment-platform/internal/infra/db/postgres"
	"training-enrollment-platform/internal/infra/logging"
	"training-enrollment-platform/internal/infra/mail"
	"training-enrollment-platform/internal/infra/metrics"
	pay "training-enrollment-platform/internal/infra/payment"
	red "training-enrollment-platform/internal/infra/redis"
	"training-enrollment-platform/internal/infra/sched"
	"training-enrollment-platform/internal/infra/web"
	"training-enrollment-platform/internal/infra/ws"
	"training-enrollment-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}

	// ---- Redis (optional; limiter and program cache degrade without it) ----
	var limiter web.RateLimiter
	var redisClient red.RedisClient
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; webhook rate limiting and program cache disabled")
		} else {
			redisClient = rc
			limiter = red.NewRateLimiter(rc)
			defer rc.Close()
		}
	}

	// ---- Repositories ----
	paymentRepo := pg.NewPaymentRepo(pool)
	applicationRepo := pg.NewApplicationRepo(pool)
	receiptRepo := pg.NewReceiptRepo(pool)
	notificationRepo := pg.NewNotificationRepo(pool)
	traineeRepo := pg.NewTraineeRepo(pool)
	tm := pg.NewTxManager(pool)

	programs := repository.ProgramRepository(pg.NewProgramRepo(pool))
	if redisClient != nil {
		programs = pg.NewProgramRepoCacheDecorator(programs, redisClient, cfg.Redis.TTL)
	}

	// ---- Payment gateways ----
	gateways := make(map[model.PaymentProvider]adapter.PaymentGateway)
	if cfg.Payment.Paystack.SecretKey != "" {
		gw, err := pay.NewPaystackGateway(cfg.Payment.Paystack.SecretKey, cfg.Payment.Paystack.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("paystack gateway init failed")
		}
		gateways[model.ProviderPaystack] = gw
	}
	if cfg.Payment.Flutterwave.SecretKey != "" {
		gw, err := pay.NewFlutterwaveGateway(cfg.Payment.Flutterwave.SecretKey, cfg.Payment.Flutterwave.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("flutterwave gateway init failed")
		}
		gateways[model.ProviderFlutterwave] = gw
	}
	if len(gateways) == 0 {
		logger.Warn().Msg("no payment provider configured; initialization and verification will be rejected")
	}

	// ---- Live channels and mail ----
	hub := ws.NewHub(logger)
	mailer := mail.NewSMTPMailer(cfg.Mail)

	// ---- Use cases ----
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, applicationRepo, programs, gateways, cfg.Payment.Currency, logger)
	verifyUC := usecase.NewVerificationUseCase(
		paymentRepo, applicationRepo, programs, receiptRepo, notificationRepo, traineeRepo,
		gateways, hub, mailer, tm, logger,
	)
	notifUC := usecase.NewNotificationUseCase(notificationRepo, traineeRepo, hub, logger)

	// ---- Background workers ----
	watcher := sched.NewWatcher(paymentRepo, verifyUC, notifUC, cfg.Watcher.Interval, cfg.Watcher.Deadline, cfg.Watcher.Retain, logger)
	reconciler := sched.NewStaleReconciler(verifyUC, paymentRepo, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- HTTP server ----
	srv := web.NewServer(ctx, cfg, paymentUC, verifyUC, notifUC, watcher, hub, limiter, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
