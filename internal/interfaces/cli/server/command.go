package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	nodeUC "github.com/guardino-io/guardino/internal/application/node/usecases"
	provisioningUC "github.com/guardino-io/guardino/internal/application/provisioning/usecases"
	reconciliationUC "github.com/guardino-io/guardino/internal/application/reconciliation/usecases"
	resellerUC "github.com/guardino-io/guardino/internal/application/reseller/usecases"
	subscriptionUC "github.com/guardino-io/guardino/internal/application/subscription/usecases"
	"github.com/guardino-io/guardino/internal/infrastructure/adapters"
	"github.com/guardino-io/guardino/internal/infrastructure/auth"
	"github.com/guardino-io/guardino/internal/infrastructure/cache"
	"github.com/guardino-io/guardino/internal/infrastructure/config"
	"github.com/guardino-io/guardino/internal/infrastructure/database"
	"github.com/guardino-io/guardino/internal/infrastructure/repository"
	"github.com/guardino-io/guardino/internal/infrastructure/scheduler"
	"github.com/guardino-io/guardino/internal/interfaces/http/handlers"
	"github.com/guardino-io/guardino/internal/interfaces/http/middleware"
	"github.com/guardino-io/guardino/internal/interfaces/http/routes"
	"github.com/guardino-io/guardino/internal/shared/biztime"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/goroutine"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
	runJobs     bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Guardino HTTP server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")
	cmd.Flags().BoolVar(&runJobs, "jobs", true, "Run the reconciliation jobs in-process (disable when a separate worker handles them)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()
	log.Infow("starting server", "environment", env, "auto-migrate", autoMigrate)

	biztime.MustInit(cfg.Reconciliation.BusinessTimezone)

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Infow("auto-migration completed")
	}

	gdb := database.Get()

	// Redis is optional: without it subscription payloads are rebuilt on
	// every fetch.
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warnw("redis unavailable, subscription caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	txManager := db.NewTransactionManager(gdb)

	resellerRepo := repository.NewResellerRepository(gdb, log)
	ledgerRepo := repository.NewLedgerRepository(gdb, log)
	nodeRepo := repository.NewNodeRepository(gdb, log)
	allocationRepo := repository.NewAllocationRepository(gdb, log)
	vpnUserRepo := repository.NewVPNUserRepository(gdb, log)
	cleanupRepo := repository.NewCleanupTaskRepository(gdb, log)

	adapterRegistry := adapters.NewRegistry(&cfg.Provider, log)
	payloadCache := cache.NewRedisSubscriptionPayloadCache(
		redisClient,
		time.Duration(cfg.Subscription.CacheTTLSeconds)*time.Second,
		log,
	)

	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	authenticateUC := resellerUC.NewAuthenticateUseCase(resellerRepo, hasher, jwtService, log)
	createResellerUC := resellerUC.NewCreateResellerUseCase(resellerRepo, hasher, log)
	listResellersUC := resellerUC.NewListResellersUseCase(resellerRepo, log)
	adjustWalletUC := resellerUC.NewAdjustWalletUseCase(resellerRepo, ledgerRepo, txManager, log)
	ledgerHistoryUC := resellerUC.NewLedgerHistoryUseCase(resellerRepo, ledgerRepo, log)

	createNodeUC := nodeUC.NewCreateNodeUseCase(nodeRepo, adapterRegistry, log)
	listNodesUC := nodeUC.NewListNodesUseCase(nodeRepo, log)
	updateNodeStatusUC := nodeUC.NewUpdateNodeStatusUseCase(nodeRepo, log)
	deleteNodeUC := nodeUC.NewDeleteNodeUseCase(nodeRepo, log)
	allocateNodeUC := nodeUC.NewAllocateNodeUseCase(nodeRepo, resellerRepo, allocationRepo, log)
	deallocateNodeUC := nodeUC.NewDeallocateNodeUseCase(allocationRepo, log)

	provisionUC := provisioningUC.NewProvisionUserUseCase(
		resellerRepo, ledgerRepo, vpnUserRepo, nodeRepo, allocationRepo,
		cleanupRepo, adapterRegistry, txManager, cfg.Subscription.BaseURL, log,
	)
	deleteUserUC := provisioningUC.NewDeleteVPNUserUseCase(
		resellerRepo, ledgerRepo, vpnUserRepo, nodeRepo,
		cleanupRepo, adapterRegistry, txManager, payloadCache, log,
	)

	aggregateUC := subscriptionUC.NewAggregateSubscriptionUseCase(
		vpnUserRepo, nodeRepo, adapterRegistry, payloadCache,
		time.Duration(cfg.Subscription.FetchTimeoutSeconds)*time.Second, log,
	)

	authMiddleware := middleware.NewAuthMiddleware(jwtService, resellerRepo, log)

	routes.RegisterValidators()

	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger(log))

	routes.SetupRoutes(engine, &routes.RouteConfig{
		AuthHandler:      handlers.NewAuthHandler(authenticateUC, log),
		ResellerHandler:  handlers.NewResellerHandler(createResellerUC, listResellersUC, adjustWalletUC, ledgerHistoryUC, log),
		NodeHandler:      handlers.NewNodeHandler(createNodeUC, listNodesUC, updateNodeStatusUC, deleteNodeUC, allocateNodeUC, deallocateNodeUC, log),
		VPNUserHandler:   handlers.NewVPNUserHandler(provisionUC, deleteUserUC, log),
		SubscribeHandler: handlers.NewSubscribeHandler(aggregateUC, log),
		AuthMiddleware:   authMiddleware,
	})

	var schedulerManager *scheduler.SchedulerManager
	if runJobs {
		schedulerManager, err = startJobs(cfg, log,
			reconciliationUC.NewSyncTrafficUseCase(vpnUserRepo, nodeRepo, adapterRegistry, payloadCache, log),
			reconciliationUC.NewDeductDailyFeesUseCase(resellerRepo, ledgerRepo, txManager, log),
			reconciliationUC.NewRetryCleanupUseCase(cleanupRepo, nodeRepo, adapterRegistry, log),
		)
		if err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			if err := schedulerManager.Stop(); err != nil {
				log.Errorw("failed to stop scheduler", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("server stopped unexpectedly", "error", err)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func startJobs(
	cfg *config.Config,
	log logger.Interface,
	syncUC *reconciliationUC.SyncTrafficUseCase,
	feesUC *reconciliationUC.DeductDailyFeesUseCase,
	retryUC *reconciliationUC.RetryCleanupUseCase,
) (*scheduler.SchedulerManager, error) {
	manager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return nil, err
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
		return nil, err
	}
	if err := manager.RegisterDailyFeeJob(feeJob); err != nil {
		return nil, err
	}
	if err := manager.RegisterCleanupRetryJob(retryJob, time.Duration(cfg.Reconciliation.CleanupRetryMinutes)*time.Minute); err != nil {
		return nil, err
	}

	manager.Start()
	return manager, nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
