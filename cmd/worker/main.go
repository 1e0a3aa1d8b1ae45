package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	reconciliationUC "github.com/guardino-io/guardino/internal/application/reconciliation/usecases"
	"github.com/guardino-io/guardino/internal/infrastructure/adapters"
	"github.com/guardino-io/guardino/internal/infrastructure/cache"
	"github.com/guardino-io/guardino/internal/infrastructure/config"
	"github.com/guardino-io/guardino/internal/infrastructure/database"
	"github.com/guardino-io/guardino/internal/infrastructure/repository"
	"github.com/guardino-io/guardino/internal/infrastructure/scheduler"
	"github.com/guardino-io/guardino/internal/shared/biztime"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// The worker runs the reconciliation jobs without the HTTP surface. Deploy
// it alongside servers started with --jobs=false.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting reconciliation worker", "environment", env)

	biztime.MustInit(cfg.Reconciliation.BusinessTimezone)

	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	gdb := database.Get()
	txManager := db.NewTransactionManager(gdb)

	resellerRepo := repository.NewResellerRepository(gdb, log)
	ledgerRepo := repository.NewLedgerRepository(gdb, log)
	nodeRepo := repository.NewNodeRepository(gdb, log)
	vpnUserRepo := repository.NewVPNUserRepository(gdb, log)
	cleanupRepo := repository.NewCleanupTaskRepository(gdb, log)

	adapterRegistry := adapters.NewRegistry(&cfg.Provider, log)

	// Redis is optional here as in the server: without it the sweep simply
	// has no cached payloads to invalidate.
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warnw("redis unavailable, payload invalidation disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}
	payloadCache := cache.NewRedisSubscriptionPayloadCache(
		redisClient,
		time.Duration(cfg.Subscription.CacheTTLSeconds)*time.Second,
		log,
	)

	syncUC := reconciliationUC.NewSyncTrafficUseCase(vpnUserRepo, nodeRepo, adapterRegistry, payloadCache, log)
	feesUC := reconciliationUC.NewDeductDailyFeesUseCase(resellerRepo, ledgerRepo, txManager, log)
	retryUC := reconciliationUC.NewRetryCleanupUseCase(cleanupRepo, nodeRepo, adapterRegistry, log)

	manager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Errorw("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	syncJob := scheduler.JobFunc(func(ctx context.Context) error {
		_, err := syncUC.Execute(ctx)
		return err
	})
	feeJob := scheduler.JobFunc(func(ctx context.Context) error {
		_, err := feesUC.Execute(ctx)
		return err
	})
	retryJob := scheduler.JobFunc(func(ctx context.Context) error {
		_, err := retryUC.Execute(ctx)
		return err
	})

	if err := manager.RegisterTrafficSyncJob(syncJob, time.Duration(cfg.Reconciliation.TrafficSyncMinutes)*time.Minute); err != nil {
		log.Errorw("failed to register traffic sync job", "error", err)
		os.Exit(1)
	}
	if err := manager.RegisterDailyFeeJob(feeJob); err != nil {
		log.Errorw("failed to register daily fee job", "error", err)
		os.Exit(1)
	}
	if err := manager.RegisterCleanupRetryJob(retryJob, time.Duration(cfg.Reconciliation.CleanupRetryMinutes)*time.Minute); err != nil {
		log.Errorw("failed to register cleanup retry job", "error", err)
		os.Exit(1)
	}

	manager.Start()
	log.Infow("reconciliation jobs scheduled")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Infow("shutting down worker")
	if err := manager.Stop(); err != nil {
		log.Errorw("failed to stop scheduler", "error", err)
	}
	log.Infow("worker exited")
}
