package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hosting-billing-engine/internal/config"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/adapter"
	pg "hosting-billing-engine/internal/infra/db/postgres"
	"hosting-billing-engine/internal/infra/logging"
	"hosting-billing-engine/internal/infra/metrics"
	payAdapters "hosting-billing-engine/internal/infra/payment"
	red "hosting-billing-engine/internal/infra/redis"
	"hosting-billing-engine/internal/infra/sched"
	"hosting-billing-engine/internal/infra/web"
	"hosting-billing-engine/internal/infra/worker"
	"hosting-billing-engine/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	txm := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	custRepo := pg.NewCustomerRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient)
	subRepo := pg.NewSubscriptionRepo(pool)
	invRepo := pg.NewInvoiceRepo(pool)
	usageRepo := pg.NewUsageRepo(pool)

	// ---- Gateway adapters ----
	card := payAdapters.NewCardGateway(cfg.Gateways.Card.SuccessRate, logger,
		payAdapters.WithCardLatency(cfg.Gateways.Card.Latency))
	debit := payAdapters.NewDebitGateway(cfg.Gateways.Debit.SuccessRate, logger,
		payAdapters.WithDebitLatency(cfg.Gateways.Debit.Latency))
	gateways := map[model.ProviderID]adapter.PaymentGateway{
		model.ProviderCard:  card,
		model.ProviderDebit: debit,
	}

	// ---- Use cases ----
	orch := usecase.NewPaymentOrchestrator(gateways, cfg.Gateways.CallTimeout, logger)
	subUC := usecase.NewSubscriptionLifecycle(subRepo, custRepo, planRepo, invRepo, orch, txm, locker, logger)
	custUC := usecase.NewCustomerUseCase(custRepo)
	planUC := usecase.NewPlanUseCase(planRepo)
	invUC := usecase.NewInvoiceUseCase(invRepo)
	usageUC := usecase.NewUsageUseCase(usageRepo, subRepo, planRepo)
	statsUC := usecase.NewStatsUseCase(custRepo, subRepo, invRepo, logger)

	// ---- Background workers ----
	pool2 := worker.NewPool(cfg.Scheduler.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	renewals := sched.NewRenewalWorker(cfg.Scheduler.RenewalCron, cfg.Scheduler.RenewalBatch, subRepo, subUC, pool2, logger)
	if err := renewals.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("renewal worker")
	}
	defer renewals.Stop()

	reconciler := sched.NewSettlementReconciler(subRepo, subUC, cfg.Scheduler.ReconcileInterval, cfg.Scheduler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- HTTP API ----
	auth := web.NewAuthManager(cfg.API.JWTSecret, !cfg.Runtime.Dev, "", cfg.API.JWTTTL)
	srv := web.NewServer(subUC, custUC, planUC, invUC, usageUC, statsUC, auth, cfg.API.Key, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := server.Shutdown(shutCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
}
